package editor

import (
	"fmt"

	"github.com/twiced-technology-gmbh/taskwatch/internal/output"
	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
)

// previewTasks shows the pending table.
func (s *Session) previewTasks() {
	s.previewTable("Task Preview")
}

// previewTable renders the pending list, or the empty message.
func (s *Session) previewTable(title string) {
	if len(s.tasks) == 0 {
		fmt.Fprintln(s.out, "No tasks available.")
		return
	}
	output.TaskTable(s.out, title, s.tasks)
}

// viewHistory shows the completed tasks.
func (s *Session) viewHistory() error {
	history, warnings, err := s.store.LoadHistory()
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(s.out, "Warning: skipping unreadable content in %s: %v\n", w.File, w.Err)
	}

	if len(history) == 0 {
		fmt.Fprintln(s.out, "Task history is empty.")
		return nil
	}
	output.TaskTable(s.out, "Completed Tasks", task.Sorted(history))
	return nil
}
