package scan

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/twiced-technology-gmbh/taskwatch/internal/config"
	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
	"github.com/twiced-technology-gmbh/taskwatch/internal/timefmt"
)

// mockStore serves a fixed task list and records writes.
type mockStore struct {
	mu        sync.Mutex
	tasks     []*task.Task
	warnings  []task.ReadWarning
	appendErr error

	saved    [][]*task.Task
	appended [][]*task.Task
}

func (m *mockStore) Load() ([]*task.Task, []task.ReadWarning, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasks, m.warnings, nil
}

func (m *mockStore) Save(tasks []*task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, tasks)
	return nil
}

func (m *mockStore) AppendHistory(fired []*task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, fired)
	return nil
}

func (m *mockStore) Lock() (func() error, error) {
	return func() error { return nil }, nil
}

func (m *mockStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

// mockNotifier records sent notifications.
type mockNotifier struct {
	mu     sync.Mutex
	bodies []string
}

func (m *mockNotifier) Send(title, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies = append(m.bodies, body)
	return nil
}

func (m *mockNotifier) sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.bodies...)
}

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)

func newTestScanner(store *mockStore, notifier *mockNotifier) *Scanner {
	cfg := config.NewDefault()
	s := New(cfg, store, notifier, log.New(io.Discard))
	s.now = func() time.Time { return testNow }
	return s
}

func at(offset time.Duration) timefmt.Stamp {
	return timefmt.New(testNow.Add(offset))
}

func TestScanner_DueNowMigratesToHistory(t *testing.T) {
	store := &mockStore{tasks: []*task.Task{
		{Name: "overdue", Time: at(-time.Minute), Priority: 1},
		{Name: "later", Time: at(time.Hour), Priority: 2},
	}}
	notifier := &mockNotifier{}
	s := newTestScanner(store, notifier)

	s.RunCycle(context.Background())

	if len(store.appended) != 1 || len(store.appended[0]) != 1 {
		t.Fatalf("expected 1 history append with 1 task, got %v", store.appended)
	}
	if store.appended[0][0].Name != "overdue" {
		t.Errorf("appended task = %q, want overdue", store.appended[0][0].Name)
	}

	if len(store.saved) != 1 || len(store.saved[0]) != 1 {
		t.Fatalf("expected pending rewritten with 1 task, got %v", store.saved)
	}
	if store.saved[0][0].Name != "later" {
		t.Errorf("remaining task = %q, want later", store.saved[0][0].Name)
	}

	bodies := notifier.sent()
	if len(bodies) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(bodies))
	}
	want := "Task Due\nTask: overdue\nTime: " + at(-time.Minute).String() + "\nPriority: 1"
	if bodies[0] != want {
		t.Errorf("notification = %q, want %q", bodies[0], want)
	}
}

func TestScanner_DueSoonNotifiesWithoutRewriting(t *testing.T) {
	store := &mockStore{tasks: []*task.Task{
		{Name: "soon", Time: at(50 * time.Second), Priority: 1},
	}}
	notifier := &mockNotifier{}
	s := newTestScanner(store, notifier)

	s.RunCycle(context.Background())

	bodies := notifier.sent()
	if len(bodies) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(bodies))
	}
	want := "Task Due Soon\nTask: soon due in 60 seconds"
	if bodies[0] != want {
		t.Errorf("notification = %q, want %q", bodies[0], want)
	}

	// Nothing fired, so the stores must not be touched.
	if store.saveCount() != 0 || len(store.appended) != 0 {
		t.Errorf("expected no writes, got saves=%d appends=%d",
			store.saveCount(), len(store.appended))
	}
}

func TestScanner_FarFutureStaysQuiet(t *testing.T) {
	store := &mockStore{tasks: []*task.Task{
		{Name: "distant", Time: at(2 * time.Hour), Priority: 3},
	}}
	notifier := &mockNotifier{}
	s := newTestScanner(store, notifier)

	s.RunCycle(context.Background())

	if n := len(notifier.sent()); n != 0 {
		t.Errorf("expected no notifications, got %d", n)
	}
	if store.saveCount() != 0 {
		t.Errorf("expected no pending rewrite, got %d", store.saveCount())
	}
}

func TestScanner_ClassifyWindowBounds(t *testing.T) {
	s := newTestScanner(&mockStore{}, &mockNotifier{})
	checkFreq := 20 * time.Second
	threshold := 60 * time.Second

	tests := []struct {
		name   string
		offset time.Duration
		want   state
	}{
		{"exactly now", 0, stateDueNow},
		{"past", -time.Second, stateDueNow},
		{"just inside upper bound", 60 * time.Second, stateDueSoon},
		{"inside window", 41 * time.Second, stateDueSoon},
		{"lower bound excluded", 40 * time.Second, statePending},
		{"above upper bound", 61 * time.Second, statePending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := &task.Task{Name: "x", Time: at(tt.offset), Priority: 1}
			got := s.classify(tk, testNow, checkFreq, threshold)
			if got != tt.want {
				t.Errorf("classify(%v) = %v, want %v", tt.offset, got, tt.want)
			}
		})
	}
}

func TestScanner_UnreadableTimeStaysPending(t *testing.T) {
	var vague task.Task
	if err := vague.Time.UnmarshalJSON([]byte(`"whenever"`)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	vague.Name = "vague"
	vague.Priority = 2

	store := &mockStore{tasks: []*task.Task{
		&vague,
		{Name: "due", Time: at(-time.Second), Priority: 1},
	}}
	notifier := &mockNotifier{}
	s := newTestScanner(store, notifier)

	s.RunCycle(context.Background())

	if len(store.saved) != 1 {
		t.Fatalf("expected 1 pending rewrite, got %d", len(store.saved))
	}
	remaining := store.saved[0]
	if len(remaining) != 1 || remaining[0].Name != "vague" {
		t.Errorf("expected vague task kept in pending, got %v", remaining)
	}
	if len(store.appended) != 1 || store.appended[0][0].Name != "due" {
		t.Errorf("expected due task in history, got %v", store.appended)
	}
}

func TestScanner_HistoryFailureLeavesPendingUntouched(t *testing.T) {
	store := &mockStore{
		tasks:     []*task.Task{{Name: "due", Time: at(-time.Second), Priority: 1}},
		appendErr: errors.New("disk full"),
	}
	notifier := &mockNotifier{}
	s := newTestScanner(store, notifier)

	s.RunCycle(context.Background())

	if store.saveCount() != 0 {
		t.Errorf("pending must not be rewritten when the history append fails, got %d saves",
			store.saveCount())
	}
}

func TestScanner_EmbeddedCommandResultNotification(t *testing.T) {
	store := &mockStore{tasks: []*task.Task{
		{Name: "-e echo hi", Time: at(-time.Second), Priority: 1},
	}}
	notifier := &mockNotifier{}
	s := newTestScanner(store, notifier)

	var gotCommand string
	s.run = func(_ context.Context, command string) (string, string) {
		gotCommand = command
		return "hi\n", ""
	}

	s.RunCycle(context.Background())
	s.commands.Wait()

	if gotCommand != "echo hi" {
		t.Errorf("command = %q, want %q", gotCommand, "echo hi")
	}

	var result string
	for _, b := range notifier.sent() {
		if strings.HasPrefix(b, "Command Execution Result") {
			result = b
		}
	}
	if result == "" {
		t.Fatal("no command result notification sent")
	}
	if !strings.Contains(result, "Command: echo hi") || !strings.Contains(result, "Output: hi") {
		t.Errorf("unexpected result notification: %q", result)
	}
}

func TestScanner_StartStop(t *testing.T) {
	cfg := config.NewDefault()
	cfg.Scan.CheckFrequencySeconds = 3600 // no tick during the test
	s := New(cfg, &mockStore{}, &mockNotifier{}, log.New(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	cancel()

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("scanner did not stop after context cancel")
	}
}

func TestEverySpec(t *testing.T) {
	if got := everySpec(20 * time.Second); got != "@every 20s" {
		t.Errorf("everySpec = %q, want %q", got, "@every 20s")
	}
}
