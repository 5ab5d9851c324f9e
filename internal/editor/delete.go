package editor

import (
	"fmt"
	"strconv"

	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
)

// deleteTask removes a task chosen by its position in the displayed
// table or by exact name. A name reference removes every task carrying
// that name.
func (s *Session) deleteTask() error {
	s.previewTable("Current Tasks")

	input, err := s.promptLine("\nEnter the index or name of the task to delete: ")
	if err != nil {
		return err
	}

	if index, convErr := strconv.Atoi(input); convErr == nil {
		if index < 1 || index > len(s.tasks) {
			fmt.Fprintln(s.out, "Invalid index. Please enter a valid index.")
			return nil
		}
		name := s.tasks[index-1].Name

		confirmed, err := s.confirmDelete(name)
		if err != nil || !confirmed {
			return err
		}

		s.tasks = append(s.tasks[:index-1], s.tasks[index:]...)
		s.recordDelete(name)
		return nil
	}

	if !s.hasTaskNamed(input) {
		fmt.Fprintln(s.out, "Invalid input. Please enter a valid index or task name.")
		return nil
	}

	confirmed, err := s.confirmDelete(input)
	if err != nil || !confirmed {
		return err
	}

	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.Name != input {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.recordDelete(input)
	return nil
}

// confirmDelete asks before removing; a bare Enter keeps the task.
func (s *Session) confirmDelete(name string) (bool, error) {
	confirmed, err := s.confirm(fmt.Sprintf("Confirm to delete task '%s'? (Y/N): ", name), false)
	if err != nil {
		return false, err
	}
	if !confirmed {
		fmt.Fprintln(s.out, "Deletion canceled.")
		return false, nil
	}
	return true, nil
}

func (s *Session) recordDelete(name string) {
	fmt.Fprintf(s.out, "Task '%s' deleted.\n", name)
	s.notify(fmt.Sprintf("Task: '%s' deleted!", name))
	task.LogActivity(s.cfg.Dir(), "delete", name, "")
	s.persist()
}

func (s *Session) hasTaskNamed(name string) bool {
	for _, t := range s.tasks {
		if t.Name == name {
			return true
		}
	}
	return false
}
