package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/taskwatch/internal/config"
	"github.com/twiced-technology-gmbh/taskwatch/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func configAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"paths.tasks_file": {
			get:      func(c *config.Config) any { return c.Paths.TasksFile },
			set:      func(c *config.Config, v string) error { c.Paths.TasksFile = v; return nil },
			writable: true,
		},
		"paths.history_file": {
			get:      func(c *config.Config) any { return c.Paths.HistoryFile },
			set:      func(c *config.Config, v string) error { c.Paths.HistoryFile = v; return nil },
			writable: true,
		},
		"log.file": {
			get:      func(c *config.Config) any { return c.Log.File },
			set:      func(c *config.Config, v string) error { c.Log.File = v; return nil },
			writable: true,
		},
		"scan.check_frequency_seconds": {
			get:      func(c *config.Config) any { return c.Scan.CheckFrequencySeconds },
			set:      setSeconds("scan.check_frequency_seconds", func(c *config.Config, n int) { c.Scan.CheckFrequencySeconds = n }),
			writable: true,
		},
		"scan.due_soon_threshold_seconds": {
			get:      func(c *config.Config) any { return c.Scan.DueSoonThresholdSeconds },
			set:      setSeconds("scan.due_soon_threshold_seconds", func(c *config.Config, n int) { c.Scan.DueSoonThresholdSeconds = n }),
			writable: true,
		},
		"scan.command_timeout_seconds": {
			get:      func(c *config.Config) any { return c.Scan.CommandTimeoutSeconds },
			set:      setSeconds("scan.command_timeout_seconds", func(c *config.Config, n int) { c.Scan.CommandTimeoutSeconds = n }),
			writable: true,
		},
		"pushbullet.access_token": {
			get:      func(c *config.Config) any { return c.Pushbullet.AccessToken },
			set:      func(c *config.Config, v string) error { c.Pushbullet.AccessToken = v; return nil },
			writable: true,
		},
	}
}

// setSeconds builds a setter for an integer-seconds key. Range checks
// live in Validate.
func setSeconds(key string, assign func(*config.Config, int)) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return clierr.Newf(clierr.InvalidInput, "invalid %s %q: must be an integer", key, v)
		}
		assign(c, n)
		return nil
	}
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"paths.tasks_file",
		"paths.history_file",
		"log.file",
		"scan.check_frequency_seconds",
		"scan.due_soon_threshold_seconds",
		"scan.command_timeout_seconds",
		"pushbullet.access_token",
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	// Table mode: key-value pairs.
	for _, key := range allConfigKeys() {
		val := accessors[key].get(cfg)
		fmt.Fprintf(os.Stdout, "%-32s %v\n", key, val)
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}

	val := acc.get(cfg)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}

	fmt.Fprintln(os.Stdout, val)
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}

	output.Messagef(os.Stdout, "Set %s = %v", key, acc.get(cfg))
	return nil
}
