package output

import (
	"fmt"
	"io"

	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
)

// TaskCompact renders tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []*task.Task) {
	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t))
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t *task.Task) string {
	return t.Time.String() + " [" + task.PriorityLabel(t.Priority) + "] " + t.Name
}
