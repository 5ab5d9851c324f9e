// Package cmd implements the taskwatch CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/taskwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/taskwatch/internal/config"
	"github.com/twiced-technology-gmbh/taskwatch/internal/notify"
	"github.com/twiced-technology-gmbh/taskwatch/internal/output"
	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagDir     string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "taskwatch",
	Short: "Passkey-gated task reminders for your terminal",
	Long: `taskwatch schedules one-shot reminders and delivers them while you work.
Run taskwatch with no arguments to open the interactive menu, and keep
'taskwatch watch' running in the background to get notified when tasks
come due.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runMenu,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" || termenv.EnvColorProfile() == termenv.Ascii {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to taskwatch directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	// Handle SilentError — exit with code, no output.
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	// Determine if JSON mode is active.
	jsonMode := flagJSON
	if !jsonMode {
		jsonMode = os.Getenv("TASKWATCH_OUTPUT") == "json"
	}

	if jsonMode {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		// Unknown error — wrap as INTERNAL_ERROR.
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	// Non-JSON mode: print to stderr.
	fmt.Fprintln(os.Stderr, err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// defaultHomeDir returns the path to ~/.config/taskwatch.
func defaultHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config/taskwatch"), nil
}

// resolveDir returns the path to the taskwatch directory: the --dir
// flag when given, otherwise ~/.config/taskwatch.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	return defaultHomeDir()
}

// loadConfig loads the taskwatch config.
// A broken config file degrades to defaults with a warning so the user
// is never locked out of their tasks; only a missing config is fatal.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err == nil {
		return cfg, nil
	}

	if errors.Is(err, config.ErrInvalid) {
		fmt.Fprintf(os.Stderr, "Warning: %v; using defaults\n", err)
		return cfg, nil
	}

	if errors.Is(err, config.ErrNotFound) {
		return nil, clierr.New(clierr.ConfigNotFound, err.Error())
	}

	return nil, err
}

// openStore returns the task store for the loaded config.
func openStore(cfg *config.Config) *task.Store {
	return task.NewStore(cfg.TasksPath(), cfg.HistoryPath())
}

// newNotifier builds the notification transport. Without an access
// token notifications are silently disabled.
func newNotifier(cfg *config.Config) notify.Notifier {
	if cfg.Pushbullet.AccessToken == "" {
		return notify.Nop{}
	}
	return notify.NewPushbullet(cfg.Pushbullet.AccessToken)
}

// readSecret reads a passkey from the terminal without echo. Callers
// must only install it when stdin is a terminal.
func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stdout, prompt)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stdout)
	if err != nil {
		return "", fmt.Errorf("reading passkey: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// printWarnings writes store read warnings to stderr.
func printWarnings(warnings []task.ReadWarning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: skipping unreadable content in %s: %v\n", w.File, w.Err)
	}
}

// resolveTaskRef resolves a 1-based list position or exact name against
// the sorted pending list. Name references may match several tasks;
// the returned indexes are ascending.
func resolveTaskRef(tasks []*task.Task, ref string) ([]int, error) {
	if index, err := strconv.Atoi(ref); err == nil {
		if index < 1 || index > len(tasks) {
			return nil, clierr.Newf(clierr.TaskNotFound,
				"no task at position %d (list has %d)", index, len(tasks))
		}
		return []int{index - 1}, nil
	}

	var matches []int
	for i, t := range tasks {
		if t.Name == ref {
			matches = append(matches, i)
		}
	}
	if len(matches) == 0 {
		return nil, clierr.Newf(clierr.TaskNotFound, "no task named %q", ref)
	}
	return matches, nil
}

// logActivity appends an entry to the activity log. Errors are silently
// discarded because logging should never fail a command.
func logActivity(cfg *config.Config, action, taskName, detail string) {
	task.LogActivity(cfg.Dir(), action, taskName, detail)
}
