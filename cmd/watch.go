package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskwatch/internal/config"
	"github.com/twiced-technology-gmbh/taskwatch/internal/scan"
	"github.com/twiced-technology-gmbh/taskwatch/internal/timefmt"
	"github.com/twiced-technology-gmbh/taskwatch/internal/watcher"
)

var flagWatchOnce bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the reminder daemon",
	Long: `Polls the task store on the configured frequency, sends due-soon and
due notifications, runs embedded commands, and moves fired tasks to
history. Runs until interrupted; activity goes to the configured log
file.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&flagWatchOnce, "once", false, "run a single scan cycle and exit")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog := newDaemonLogger(cfg)
	defer closeLog()

	if cfg.Pushbullet.AccessToken == "" {
		logger.Warn("pushbullet access token not configured; notifications disabled")
	}

	scanner := scan.New(cfg, openStore(cfg), newNotifier(cfg), logger)

	if flagWatchOnce {
		scanner.RunCycle(context.Background())
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := scanner.Start(ctx); err != nil {
		return err
	}

	startConfigReload(ctx, cfg, scanner, logger)

	fmt.Fprintln(os.Stderr, "Watching for due tasks... (Ctrl+C to stop)")
	<-scanner.Done()
	return nil
}

// startConfigReload feeds config edits to the running scanner so
// frequency and threshold changes apply without a restart. Reload is
// best effort; the daemon keeps the old config if the file goes bad.
func startConfigReload(ctx context.Context, cfg *config.Config, scanner *scan.Scanner, logger *log.Logger) {
	w, err := watcher.New([]string{cfg.ConfigPath()}, func() {
		fresh, err := config.Load(cfg.Dir())
		if fresh == nil || (err != nil && !errors.Is(err, config.ErrInvalid)) {
			logger.Warn("config reload failed", "err", err)
			return
		}
		scanner.SetConfig(fresh)
		logger.Info("config reloaded")
	})
	if err != nil {
		logger.Warn("config watch unavailable", "err", err)
		return
	}

	go func() {
		defer w.Close() //nolint:errcheck // best-effort close on shutdown
		w.Run(ctx, func(err error) {
			logger.Warn("config watch error", "err", err)
		})
	}()
}

// newDaemonLogger opens the configured log file for append. If it
// cannot be opened the daemon logs to stderr instead of refusing to
// start.
func newDaemonLogger(cfg *config.Config) (*log.Logger, func()) {
	opts := log.Options{
		ReportTimestamp: true,
		TimeFormat:      timefmt.Canonical,
	}

	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // log path comes from trusted config
	if err != nil {
		logger := log.NewWithOptions(os.Stderr, opts)
		logger.Warn("cannot open log file, logging to stderr", "file", cfg.LogPath(), "err", err)
		return logger, func() {}
	}

	return log.NewWithOptions(f, opts), func() {
		f.Close() //nolint:errcheck // nothing useful to do with a close error
	}
}
