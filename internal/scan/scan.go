// Package scan implements the due-task polling engine behind the watch
// daemon. Each cycle loads the pending store, classifies every task as
// pending, due soon, or due now, notifies accordingly, and migrates
// fired tasks to history.
package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/twiced-technology-gmbh/taskwatch/internal/config"
	"github.com/twiced-technology-gmbh/taskwatch/internal/notify"
	"github.com/twiced-technology-gmbh/taskwatch/internal/runner"
	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
)

// Store is the slice of the task store the scanner needs.
type Store interface {
	Load() ([]*task.Task, []task.ReadWarning, error)
	Save([]*task.Task) error
	AppendHistory([]*task.Task) error
	Lock() (func() error, error)
}

// state classifies a task within one cycle.
type state int

const (
	statePending state = iota
	stateDueSoon
	stateDueNow
)

// Scanner polls the pending store on a fixed period. Cycles are
// serialized: a cycle that overruns the period makes the next tick skip
// rather than run concurrently.
type Scanner struct {
	store    Store
	notifier notify.Notifier
	logger   *log.Logger

	// now and run are swapped in tests.
	now func() time.Time
	run func(ctx context.Context, command string) (stdout, stderr string)

	mu      sync.Mutex
	cfg     *config.Config
	cron    *cron.Cron
	entryID cron.EntryID
	runCtx  context.Context

	commands sync.WaitGroup
	stopOnce sync.Once
	stopped  chan struct{}
}

// New creates a scanner over the given store.
func New(cfg *config.Config, store Store, notifier notify.Notifier, logger *log.Logger) *Scanner {
	return &Scanner{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		run:      runner.Run,
		cfg:      cfg,
		stopped:  make(chan struct{}),
	}
}

// Start schedules the scan cycle and begins ticking. The scanner stops
// itself when ctx is canceled.
func (s *Scanner) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cronLog := cron.PrintfLogger(s.logger)
	s.cron = cron.New(cron.WithChain(
		cron.Recover(cronLog),
		cron.SkipIfStillRunning(cronLog),
	))
	s.runCtx = ctx

	id, err := s.cron.AddFunc(everySpec(s.cfg.CheckFrequency()), s.tick)
	if err != nil {
		return fmt.Errorf("scheduling scan cycle: %w", err)
	}
	s.entryID = id

	s.cron.Start()
	s.logger.Info("scanner started",
		"check_frequency", s.cfg.CheckFrequency(),
		"due_soon_threshold", s.cfg.DueSoonThreshold())

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts the schedule and waits for the running cycle and in-flight
// commands. Safe to call multiple times.
func (s *Scanner) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		c := s.cron
		s.mu.Unlock()

		if c != nil {
			stopCtx := c.Stop()
			<-stopCtx.Done()
		}
		s.commands.Wait()
		close(s.stopped)
		s.logger.Info("scanner stopped")
	})
}

// Done returns a channel closed once the scanner has fully stopped.
func (s *Scanner) Done() <-chan struct{} {
	return s.stopped
}

// SetConfig swaps the scanner's configuration. Threshold and timeout
// changes take effect on the next cycle; a changed check frequency
// reschedules the cron entry.
func (s *Scanner) SetConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.cfg.CheckFrequency()
	s.cfg = cfg

	if s.cron == nil || cfg.CheckFrequency() == prev {
		return
	}

	s.cron.Remove(s.entryID)
	id, err := s.cron.AddFunc(everySpec(cfg.CheckFrequency()), s.tick)
	if err != nil {
		s.logger.Error("rescheduling scan cycle failed", "err", err)
		return
	}
	s.entryID = id
	s.logger.Info("scan frequency changed", "check_frequency", cfg.CheckFrequency())
}

// tick is the scheduled job body.
func (s *Scanner) tick() {
	s.mu.Lock()
	ctx := s.runCtx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	s.RunCycle(ctx)
}

// RunCycle performs one scan over the pending store. It is the body of
// the scheduled job and what --once runs directly. Errors are logged,
// never returned: a failed cycle must not take the schedule down.
func (s *Scanner) RunCycle(ctx context.Context) {
	if err := s.cycle(ctx); err != nil {
		s.logger.Error("scan cycle failed", "err", err)
	}
}

func (s *Scanner) cycle(ctx context.Context) error {
	checkFreq, threshold, cmdTimeout := s.snapshot()

	unlock, err := s.store.Lock()
	if err != nil {
		return fmt.Errorf("acquiring store lock: %w", err)
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit

	tasks, warnings, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}
	for _, w := range warnings {
		s.logger.Warn("skipping unreadable store content", "file", w.File, "err", w.Err)
	}

	now := s.now()

	var remaining, fired []*task.Task
	for _, t := range tasks {
		switch s.classify(t, now, checkFreq, threshold) {
		case stateDueNow:
			fired = append(fired, t)
		case stateDueSoon:
			s.notifyDueSoon(t, threshold)
			remaining = append(remaining, t)
		default:
			remaining = append(remaining, t)
		}
	}

	if len(fired) == 0 {
		return nil
	}

	for _, t := range fired {
		s.notifyDueNow(t)
		if command, ok := task.EmbeddedCommand(t.Name); ok {
			s.launchCommand(ctx, command, cmdTimeout)
		}
	}

	// History first: if the append fails, pending stays untouched and
	// the tasks fire again next cycle instead of vanishing.
	if err := s.store.AppendHistory(fired); err != nil {
		return fmt.Errorf("recording completed tasks: %w", err)
	}
	if err := s.store.Save(remaining); err != nil {
		return fmt.Errorf("rewriting pending tasks: %w", err)
	}

	s.logger.Info("tasks completed", "count", len(fired))
	return nil
}

// classify decides which bucket a task falls into this cycle. The
// due-soon window spans one check period ending at the threshold, so a
// healthy timer sees each task in it exactly once.
func (s *Scanner) classify(t *task.Task, now time.Time, checkFreq, threshold time.Duration) state {
	if !t.Time.Valid() {
		s.logger.Warn("task has an unreadable time, leaving it pending",
			"task", t.Name, "time", t.Time.String())
		return statePending
	}

	delta := t.Time.Time().Sub(now)
	if delta <= 0 {
		return stateDueNow
	}
	if delta > threshold-checkFreq && delta <= threshold {
		return stateDueSoon
	}
	return statePending
}

func (s *Scanner) notifyDueSoon(t *task.Task, threshold time.Duration) {
	body := fmt.Sprintf("Task Due Soon\nTask: %s due in %d seconds",
		t.Name, int(threshold.Seconds()))
	if err := s.notifier.Send(notify.Title, body); err != nil {
		s.logger.Warn("notification failed", "task", t.Name, "err", err)
		return
	}
	s.logger.Info("task due soon", "task", t.Name)
}

func (s *Scanner) notifyDueNow(t *task.Task) {
	body := fmt.Sprintf("Task Due\nTask: %s\nTime: %s\nPriority: %d",
		t.Name, t.Time.String(), t.Priority)
	if err := s.notifier.Send(notify.Title, body); err != nil {
		s.logger.Warn("notification failed", "task", t.Name, "err", err)
		return
	}
	s.logger.Info("task due", "task", t.Name, "time", t.Time.String())
}

// launchCommand runs an embedded command in its own goroutine so a slow
// command never stalls the schedule. The result is reported through a
// follow-up notification.
func (s *Scanner) launchCommand(ctx context.Context, command string, timeout time.Duration) {
	s.commands.Add(1)
	go func() {
		defer s.commands.Done()

		cmdCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		stdout, stderr := s.run(cmdCtx, command)
		s.logger.Info("command finished", "command", command)

		body := fmt.Sprintf("Command Execution Result\nCommand: %s\nOutput: %s\nError: %s",
			command, stdout, stderr)
		if err := s.notifier.Send(notify.Title, body); err != nil {
			s.logger.Warn("notification failed", "command", command, "err", err)
		}
	}()
}

func (s *Scanner) snapshot() (checkFreq, threshold, cmdTimeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.CheckFrequency(), s.cfg.DueSoonThreshold(), s.cfg.CommandTimeout()
}

func everySpec(d time.Duration) string {
	return fmt.Sprintf("@every %ds", int(d.Seconds()))
}
