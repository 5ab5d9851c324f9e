package editor

import (
	"fmt"
	"strconv"

	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
	"github.com/twiced-technology-gmbh/taskwatch/internal/timefmt"
)

// updateTask edits a task chosen by position or name, keeping any field
// the user leaves blank.
func (s *Session) updateTask() error {
	s.previewTable("Current Tasks")

	for i := 0; i < locateAttempts; i++ {
		input, err := s.promptLine("\nEnter the index or name of the task to update: ")
		if err != nil {
			return err
		}

		target := s.findTask(input)
		if target == nil {
			continue
		}

		fmt.Fprintf(s.out, "Updating %s...\n", target.Name)
		changed, err := s.updateDetails(target)
		if err != nil {
			return err
		}
		if changed {
			task.Sort(s.tasks)
			s.persist()
		}
		return nil
	}
	return nil
}

// findTask resolves an index-or-name reference into the pending list.
// Prints the relevant message and returns nil when nothing matches.
func (s *Session) findTask(input string) *task.Task {
	if index, err := strconv.Atoi(input); err == nil {
		if index >= 1 && index <= len(s.tasks) {
			return s.tasks[index-1]
		}
		fmt.Fprintln(s.out, "Invalid index. Please enter a valid index.")
		return nil
	}

	for _, t := range s.tasks {
		if t.Name == input {
			return t
		}
	}
	fmt.Fprintln(s.out, "Invalid input. Please enter a valid index or task name.")
	return nil
}

// updateDetails prompts for replacement fields and applies them after
// confirmation. Returns whether the task changed.
func (s *Session) updateDetails(t *task.Task) (bool, error) {
	origName := t.Name

	newName, err := s.promptLine("Enter updated task name (press Enter to keep the same): ")
	if err != nil {
		return false, err
	}

	newTime := t.Time
	for i := 0; i < timeAttempts; i++ {
		input, err := s.promptLine("Enter updated task time (press Enter to keep the same): ")
		if err != nil {
			return false, err
		}
		if input == "" {
			break
		}
		stamp, ok := timefmt.ParseFlexible(input)
		if ok && timefmt.IsFutureAndValid(stamp.String()) {
			newTime = stamp
			break
		}
		fmt.Fprintln(s.out, "Invalid time. Please make sure time is in the future and in correct format.")
	}

	newPriority := t.Priority
	prioStr, err := s.promptLine("Enter updated priority (press Enter to keep the same): ")
	if err != nil {
		return false, err
	}
	if prioStr != "" {
		p, convErr := strconv.Atoi(prioStr)
		if convErr != nil || !task.ValidPriority(p) {
			fmt.Fprintln(s.out, "Invalid priority level. Choose 1 for High, 2 for Medium, or 3 for Low.")
		} else {
			newPriority = p
		}
	}

	confirmed, err := s.confirm(fmt.Sprintf("Confirm to update task '%s'? (Default is Y) Y/N: ", origName), true)
	if err != nil {
		return false, err
	}
	if !confirmed {
		fmt.Fprintln(s.out, "Task update cancelled.")
		return false, nil
	}

	if newName != "" {
		t.Name = newName
	}
	t.Time = newTime
	t.Priority = newPriority

	fmt.Fprintf(s.out, "Task '%s' updated!\n", origName)
	s.notify(fmt.Sprintf("Task: %s updated!", origName))
	task.LogActivity(s.cfg.Dir(), "update", origName, "")
	return true, nil
}
