package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Priority colors aligned with the TUI palette.
	priorityStyles = map[string]lipgloss.Style{
		"High":   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		"Medium": lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		"Low":    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
)

// DisableColor strips all styling from table output.
func DisableColor() {
	titleStyle = lipgloss.NewStyle()
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	priorityStyles = map[string]lipgloss.Style{}
}

// TaskTable renders tasks as a formatted table with 1-based row indexes.
// The index column matches the position arguments accepted by delete and
// update, so rows must already be in display (sorted) order.
func TaskTable(w io.Writer, title string, tasks []*task.Task) {
	if title != "" {
		fmt.Fprintln(w, titleStyle.Render(title))
		fmt.Fprintln(w)
	}

	// Calculate column widths.
	const pad = 2
	indexW, taskW, timeW, prioW := 7, 6, 21, 10
	for i, t := range tasks {
		indexW = max(indexW, len(strconv.Itoa(i+1))+pad)
		taskW = max(taskW, min(len(t.Name)+pad, 50)) //nolint:mnd // max task column width
		timeW = max(timeW, len(t.Time.String())+pad)
	}

	// Print header.
	header := fmt.Sprintf("%-*s %-*s %-*s %-*s",
		indexW, "INDEX", taskW, "TASK", timeW, "TIME", prioW, "PRIORITY")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	// Print rows.
	for i, t := range tasks {
		name := t.Name
		const maxName = 48
		if len(name) > maxName {
			name = name[:maxName-3] + "..."
		}

		timeStr := t.Time.String()
		if !t.Time.Valid() {
			timeStr = dimStyle.Render(timeStr)
		}

		row := fmt.Sprintf("%-*d %s %s %s",
			indexW, i+1,
			padRight(name, taskW),
			padRight(timeStr, timeW),
			styledPriority(t.Priority))
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// padRight pads s with spaces to the given visible width, accounting for
// ANSI escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

// styledPriority renders a priority label using the matching style.
func styledPriority(p int) string {
	label := task.PriorityLabel(p)
	if st, ok := priorityStyles[label]; ok {
		return st.Render(label)
	}
	return label
}
