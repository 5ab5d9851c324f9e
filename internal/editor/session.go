// Package editor implements the passkey-gated interactive menu over the
// task store.
package editor

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/twiced-technology-gmbh/taskwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/taskwatch/internal/config"
	"github.com/twiced-technology-gmbh/taskwatch/internal/notify"
	"github.com/twiced-technology-gmbh/taskwatch/internal/passkey"
	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
)

// Retry limits for the interactive flows.
const (
	authAttempts    = 3
	optionAttempts  = 7
	menuAttempts    = 3
	addAttempts     = 3
	locateAttempts  = 3
	timeAttempts    = 5
	passkeyAttempts = 3
)

// Menu options in display order.
const (
	optionAdd = iota + 1
	optionDelete
	optionPreview
	optionUpdate
	optionPasskey
	optionExit
	optionHistory
)

// Session owns the pending list for one interactive run. Input and
// output are injected so every flow is testable without a terminal.
type Session struct {
	cfg      *config.Config
	store    *task.Store
	passkeys *passkey.Store
	notifier notify.Notifier

	in  *bufio.Reader
	out io.Writer

	// secret reads passkey input. Defaults to a plain line read; the
	// CLI swaps in a no-echo terminal read.
	secret func(prompt string) (string, error)

	// tasks is the in-memory pending list, always kept in display
	// order so table indexes resolve against it directly.
	tasks []*task.Task
}

// New creates a session reading from in and writing to out.
func New(cfg *config.Config, store *task.Store, keys *passkey.Store, notifier notify.Notifier, in io.Reader, out io.Writer) *Session {
	s := &Session{
		cfg:      cfg,
		store:    store,
		passkeys: keys,
		notifier: notifier,
		in:       bufio.NewReader(in),
		out:      out,
	}
	s.secret = func(prompt string) (string, error) {
		return s.promptLine(prompt)
	}
	return s
}

// SetSecretReader replaces the passkey input function.
func (s *Session) SetSecretReader(fn func(prompt string) (string, error)) {
	s.secret = fn
}

// Run authenticates, loads the pending list, and serves the menu until
// the user exits.
func (s *Session) Run() error {
	if err := s.authenticate(); err != nil {
		if errors.Is(err, io.EOF) {
			return clierr.New(clierr.AuthFailed, "input ended before authentication completed")
		}
		return err
	}

	if !s.passkeys.Exists() {
		// First login with the default passkey: require a real one
		// before anything else.
		fmt.Fprintln(s.out, "\nNo passkey is set yet. Choose your own now to replace the default.")
		if err := s.promptNewPasskey(); err != nil {
			return err
		}
	}

	if err := s.load(); err != nil {
		return err
	}

	return s.menuLoop()
}

// authenticate gives the user authAttempts tries at the passkey.
func (s *Session) authenticate() error {
	for i := 0; i < authAttempts; i++ {
		entered, err := s.secret("\nEnter Passkey: ")
		if err != nil {
			return err
		}
		ok, err := s.passkeys.Verify(entered)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		s.notify("Passkey Authentication Failed!")
		fmt.Fprintln(s.out, "Incorrect Passkey")
	}

	s.notify("Passkey; Access Denied!")
	fmt.Fprintln(s.out, "Access Denied")
	return clierr.New(clierr.AuthFailed, "too many failed passkey attempts")
}

// load reads the pending store under the advisory lock.
func (s *Session) load() error {
	unlock, err := s.store.Lock()
	if err != nil {
		return fmt.Errorf("acquiring store lock: %w", err)
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit

	tasks, warnings, err := s.store.Load()
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(s.out, "Warning: skipping unreadable content in %s: %v\n", w.File, w.Err)
	}

	task.Sort(tasks)
	s.tasks = tasks
	return nil
}

func (s *Session) menuLoop() error {
	for {
		s.printMenu()

		option, err := s.chooseOption()
		if err != nil {
			return s.finish(err)
		}
		if option == 0 {
			// Attempts used up without a listed option; show the menu
			// again.
			continue
		}
		if option == optionExit {
			fmt.Fprintln(s.out, "Exiting program....")
			return nil
		}

		if err := s.runOption(option); err != nil {
			return s.finish(err)
		}
	}
}

// finish turns an exhausted input stream into a clean exit; everything
// else propagates.
func (s *Session) finish(err error) error {
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(s.out, "\nExiting program....")
		return nil
	}
	return err
}

func (s *Session) runOption(option int) error {
	switch option {
	case optionAdd:
		return s.addTask()
	case optionDelete:
		return s.deleteTask()
	case optionPreview:
		s.previewTasks()
		return nil
	case optionUpdate:
		return s.updateTask()
	case optionPasskey:
		return s.changePasskey()
	case optionHistory:
		return s.viewHistory()
	}
	return nil
}

func (s *Session) printMenu() {
	fmt.Fprintln(s.out, "\nOPTIONS")
	fmt.Fprintln(s.out, "1: Add Task")
	fmt.Fprintln(s.out, "2: Delete Task")
	fmt.Fprintln(s.out, "3: Preview Tasks")
	fmt.Fprintln(s.out, "4: Update Task")
	fmt.Fprintln(s.out, "5: Change Passkey")
	fmt.Fprintln(s.out, "6: Exit Program")
	fmt.Fprintln(s.out, "7: View Task History")
}

// notify sends a notification, reporting delivery problems without
// interrupting the flow.
func (s *Session) notify(body string) {
	if err := s.notifier.Send(notify.Title, body); err != nil {
		fmt.Fprintf(s.out, "Error sending notification: %v\n", err)
	}
}

// persist writes the pending list under the store lock. Failures are
// reported and the session continues with its in-memory state.
func (s *Session) persist() {
	unlock, err := s.store.Lock()
	if err != nil {
		s.reportSaveError(err)
		return
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit

	if err := s.store.Save(s.tasks); err != nil {
		s.reportSaveError(err)
	}
}

func (s *Session) reportSaveError(err error) {
	s.notify("Error:\nUnable to save tasks. Check file permissions and try again.")
	fmt.Fprintf(s.out, "Error: Unable to save tasks. Check file permissions and try again. (%v)\n", err)
}
