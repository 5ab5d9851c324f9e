package editor

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/taskwatch/internal/config"
	"github.com/twiced-technology-gmbh/taskwatch/internal/passkey"
	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
	"github.com/twiced-technology-gmbh/taskwatch/internal/timefmt"
)

type recordingNotifier struct {
	bodies []string
}

func (n *recordingNotifier) Send(title, body string) error {
	n.bodies = append(n.bodies, body)
	return nil
}

type fixture struct {
	t        *testing.T
	cfg      *config.Config
	store    *task.Store
	keys     *passkey.Store
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.Init(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		t:        t,
		cfg:      cfg,
		store:    task.NewStore(cfg.TasksPath(), cfg.HistoryPath()),
		keys:     passkey.NewStore(cfg.Dir()),
		notifier: &recordingNotifier{},
	}
	require.NoError(t, f.keys.Set("letmein"))
	return f
}

// run executes a full session against the scripted input lines.
func (f *fixture) run(input string) (string, error) {
	var out bytes.Buffer
	sess := New(f.cfg, f.store, f.keys, f.notifier, strings.NewReader(input), &out)
	err := sess.Run()
	return out.String(), err
}

func (f *fixture) seed(tasks ...*task.Task) {
	f.t.Helper()
	require.NoError(f.t, f.store.Save(tasks))
}

func (f *fixture) pending() []*task.Task {
	f.t.Helper()
	tasks, warnings, err := f.store.Load()
	require.NoError(f.t, err)
	require.Empty(f.t, warnings)
	return tasks
}

func taskAt(t *testing.T, name, stamp string, priority int) *task.Task {
	t.Helper()
	ts, err := timefmt.Parse(stamp)
	require.NoError(t, err)
	return &task.Task{Name: name, Time: ts, Priority: priority}
}

func TestRunAuthFailureAfterThreeAttempts(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("wrong\nstill wrong\nnope\n")

	var cliErr *clierr.Error
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierr.AuthFailed, cliErr.Code)
	assert.Equal(t, 3, strings.Count(out, "Incorrect Passkey"))
	assert.Contains(t, out, "Access Denied")
	assert.Contains(t, f.notifier.bodies, "Passkey; Access Denied!")
}

func TestRunFirstLoginForcesReset(t *testing.T) {
	cfg, err := config.Init(t.TempDir())
	require.NoError(t, err)
	keys := passkey.NewStore(cfg.Dir())
	store := task.NewStore(cfg.TasksPath(), cfg.HistoryPath())

	var out bytes.Buffer
	sess := New(cfg, store, keys, &recordingNotifier{}, strings.NewReader("taskwatch\nmynewkey\n6\n"), &out)
	require.NoError(t, sess.Run())

	assert.Contains(t, out.String(), "No passkey is set yet.")
	assert.Contains(t, out.String(), "Passkey updated successfully!")
	assert.True(t, keys.Exists())

	ok, err := keys.Verify("mynewkey")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunAddTaskPersists(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("letmein\n1\nwater plants\n2099-05-01 09:30\n2\n\n6\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Valid....")
	assert.Contains(t, out, "Task: water plants added successfully!")
	assert.Contains(t, out, "Exiting program....")

	tasks := f.pending()
	require.Len(t, tasks, 1)
	assert.Equal(t, "water plants", tasks[0].Name)
	assert.Equal(t, "2099-05-01 09:30:00", tasks[0].Time.String())
	assert.Equal(t, task.PriorityMedium, tasks[0].Priority)

	require.NotEmpty(t, f.notifier.bodies)
	assert.Contains(t, f.notifier.bodies[0], "New Task Added!")
	assert.Contains(t, f.notifier.bodies[0], "2099-05-01 09:30:00")
}

func TestRunAddRejectsPastTime(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("letmein\n1\nold\n2000-01-01\n1\n\nparty\n2099-12-31 23:00\n1\n\n6\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Invalid time. (2000-01-01) Please make sure time is in the future and in correct format.")
	assert.Contains(t, out, "Task: party added successfully!")

	tasks := f.pending()
	require.Len(t, tasks, 1)
	assert.Equal(t, "party", tasks[0].Name)
}

func TestRunAddEmptyFieldsRetry(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("letmein\n1\n\n2099-01-01\n\nstudy\n2099-01-02 10:00\n3\n\n6\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Task and Priority fields cannot be empty")

	tasks := f.pending()
	require.Len(t, tasks, 1)
	assert.Equal(t, "study", tasks[0].Name)
	assert.Equal(t, task.PriorityLow, tasks[0].Priority)
}

func TestRunDeleteByIndex(t *testing.T) {
	f := newFixture(t)
	f.seed(
		taskAt(t, "alpha", "2099-01-01 10:00:00", task.PriorityHigh),
		taskAt(t, "beta", "2099-02-01 10:00:00", task.PriorityMedium),
	)

	out, err := f.run("letmein\n2\n1\ny\n6\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Task 'alpha' deleted.")
	assert.Contains(t, f.notifier.bodies, "Task: 'alpha' deleted!")

	tasks := f.pending()
	require.Len(t, tasks, 1)
	assert.Equal(t, "beta", tasks[0].Name)
}

func TestRunDeleteBareEnterCancels(t *testing.T) {
	f := newFixture(t)
	f.seed(taskAt(t, "alpha", "2099-01-01 10:00:00", task.PriorityHigh))

	out, err := f.run("letmein\n2\n1\n\n6\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Deletion canceled.")
	assert.Len(t, f.pending(), 1)
}

func TestRunDeleteByNameRemovesAllMatches(t *testing.T) {
	f := newFixture(t)
	f.seed(
		taskAt(t, "dup", "2099-01-01 10:00:00", task.PriorityHigh),
		taskAt(t, "keep", "2099-02-01 10:00:00", task.PriorityLow),
		taskAt(t, "dup", "2099-03-01 10:00:00", task.PriorityMedium),
	)

	out, err := f.run("letmein\n2\ndup\ny\n6\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Task 'dup' deleted.")

	tasks := f.pending()
	require.Len(t, tasks, 1)
	assert.Equal(t, "keep", tasks[0].Name)
}

func TestRunDeleteUnknownReference(t *testing.T) {
	f := newFixture(t)
	f.seed(taskAt(t, "alpha", "2099-01-01 10:00:00", task.PriorityHigh))

	out, err := f.run("letmein\n2\nnosuch\n6\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Invalid input. Please enter a valid index or task name.")
	assert.Len(t, f.pending(), 1)
}

func TestRunUpdateKeepsBlankFields(t *testing.T) {
	f := newFixture(t)
	f.seed(taskAt(t, "orig", "2099-06-01 08:00:00", task.PriorityLow))

	out, err := f.run("letmein\n4\n1\nrenamed\n\n\n\n6\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Updating orig...")
	assert.Contains(t, out, "Task 'orig' updated!")

	tasks := f.pending()
	require.Len(t, tasks, 1)
	assert.Equal(t, "renamed", tasks[0].Name)
	assert.Equal(t, "2099-06-01 08:00:00", tasks[0].Time.String())
	assert.Equal(t, task.PriorityLow, tasks[0].Priority)
}

func TestRunUpdateInvalidTimeRetries(t *testing.T) {
	f := newFixture(t)
	f.seed(taskAt(t, "orig", "2099-06-01 08:00:00", task.PriorityLow))

	out, err := f.run("letmein\n4\n1\n\nbogus\n2099-03-03 08:00\n\n\n6\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Invalid time. Please make sure time is in the future and in correct format.")

	tasks := f.pending()
	require.Len(t, tasks, 1)
	assert.Equal(t, "orig", tasks[0].Name)
	assert.Equal(t, "2099-03-03 08:00:00", tasks[0].Time.String())
}

func TestRunUpdateCancelKeepsTask(t *testing.T) {
	f := newFixture(t)
	f.seed(taskAt(t, "orig", "2099-06-01 08:00:00", task.PriorityLow))

	out, err := f.run("letmein\n4\n1\nrenamed\n\n\nn\n6\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Task update cancelled.")

	tasks := f.pending()
	require.Len(t, tasks, 1)
	assert.Equal(t, "orig", tasks[0].Name)
}

func TestRunPasskeyChange(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("letmein\n5\nletmein\nnewsecret\n6\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Passkey updated successfully!")

	ok, err := f.keys.Verify("newsecret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.keys.Verify("letmein")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunPasskeyChangeWrongCurrentAborts(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("letmein\n5\nbadkey\nbadkey\nbadkey\n")

	var cliErr *clierr.Error
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierr.AuthFailed, cliErr.Code)
	assert.Equal(t, 3, strings.Count(out, "Incorrect passkey! Try again."))
	assert.Contains(t, f.notifier.bodies, "Passkey update failed! Try again later.")
}

func TestRunShortNewPasskeyAborts(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("letmein\n5\nletmein\nab\ncd\nef\n")

	var cliErr *clierr.Error
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierr.InvalidInput, cliErr.Code)
	assert.Equal(t, 3, strings.Count(out, "Invalid passkey. Passkey must be at least 5 characters long."))
	assert.Contains(t, f.notifier.bodies, "Invalid new passkey. Passkey Update failed!")
}

func TestRunMenuRetriesInvalidOptions(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("letmein\n9\n0\n6\n")
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, "Invalid option. Please choose a valid option."))
	assert.Contains(t, out, "Exiting program....")
}

func TestRunMenuRedisplaysAfterExhaustedOptions(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("letmein\n9\n9\n9\n6\n")
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(out, "Invalid option. Please choose a valid option."))
	assert.Equal(t, 2, strings.Count(out, "OPTIONS"))
}

func TestRunMenuNonNumericSelectionAborts(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("letmein\n" + strings.Repeat("x\n", 7))

	var cliErr *clierr.Error
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierr.InvalidInput, cliErr.Code)
	assert.Equal(t, 7, strings.Count(out, "Invalid Option, Try again"))
}

func TestRunEOFExitsCleanly(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("letmein\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Exiting program....")
}

func TestRunPreviewAndHistoryEmpty(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("letmein\n3\n7\n6\n")
	require.NoError(t, err)

	assert.Contains(t, out, "No tasks available.")
	assert.Contains(t, out, "Task history is empty.")
}

func TestRunHistoryShowsCompletedTasks(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AppendHistory([]*task.Task{
		taskAt(t, "done chore", "2024-01-01 10:00:00", task.PriorityHigh),
	}))

	out, err := f.run("letmein\n7\n6\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Completed Tasks")
	assert.Contains(t, out, "done chore")
}

func TestRunWarnsOnMalformedStore(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.cfg.TasksPath(), []byte("{not json"), 0o600))

	out, err := f.run("letmein\n6\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Warning: skipping unreadable content in tasks.json")
}
