package editor

import (
	"fmt"
	"strconv"

	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
	"github.com/twiced-technology-gmbh/taskwatch/internal/timefmt"
)

// addTask runs the add flow: up to addAttempts tries at a confirmed
// task with a valid future time, then a save checkpoint.
func (s *Session) addTask() error {
	added := false

	for i := 0; i < addAttempts; i++ {
		name, rawTime, priority, err := s.promptNewTask()
		if err != nil {
			return err
		}

		stamp, ok := timefmt.ParseFlexible(rawTime)
		valid := ok && timefmt.IsFutureAndValid(stamp.String())
		if valid {
			fmt.Fprintln(s.out, "Valid....")
		}

		fmt.Fprintf(s.out, "\nYour Task: %s\n", name)
		fmt.Fprintf(s.out, "Your Task Time: %s\n", rawTime)
		fmt.Fprintf(s.out, "Priority Level: %d\n", priority)

		confirmed, err := s.confirm("Confirm to add task? (Default is Yes) Y/N: ", true)
		if err != nil {
			return err
		}
		if !confirmed {
			continue
		}

		if !valid {
			fmt.Fprintf(s.out, "Invalid time. (%s) Please make sure time is in the future and in correct format.\n", rawTime)
			continue
		}

		s.tasks = append(s.tasks, &task.Task{Name: name, Time: stamp, Priority: priority})
		task.Sort(s.tasks)
		added = true

		fmt.Fprintf(s.out, "Task: %s added successfully!\n", name)
		s.notify(fmt.Sprintf("New Task Added!\nTask: %s\nTime: %s\nPriority Level: %d", name, stamp.String(), priority))
		task.LogActivity(s.cfg.Dir(), "add", name, "due "+stamp.String())
		break
	}

	if added {
		s.persist()
	}
	return nil
}

// promptNewTask collects name, time, and priority. Name and priority
// must pass basic checks before an attempt counts.
func (s *Session) promptNewTask() (string, string, int, error) {
	fmt.Fprintln(s.out, "Schedule Task")
	fmt.Fprintln(s.out, "*Datetime inputs should be in (YYYY-MM-DD HH:MM) format, time defaults to 00:00 if only date is given.")

	for {
		name, err := s.promptLine("Input Task: ")
		if err != nil {
			return "", "", 0, err
		}
		rawTime, err := s.promptLine("Task Time: ")
		if err != nil {
			return "", "", 0, err
		}
		prioStr, err := s.promptLine("Task Priority (1 for High, 2 for Medium, 3 for Low): ")
		if err != nil {
			return "", "", 0, err
		}

		if name == "" || prioStr == "" {
			fmt.Fprintln(s.out, "Task and Priority fields cannot be empty")
			continue
		}

		priority, convErr := strconv.Atoi(prioStr)
		if convErr != nil || !task.ValidPriority(priority) {
			fmt.Fprintln(s.out, "Invalid priority level. Choose 1 for High, 2 for Medium, or 3 for Low.")
			continue
		}

		return name, rawTime, priority, nil
	}
}
