// Package task handles the JSON task stores and their entries.
package task

import (
	"strconv"

	"github.com/twiced-technology-gmbh/taskwatch/internal/timefmt"
)

// Priority levels. Lower values are more urgent.
const (
	PriorityHigh   = 1
	PriorityMedium = 2
	PriorityLow    = 3
)

// Task is a single reminder entry in the pending or history store.
type Task struct {
	Name     string        `json:"name"`
	Time     timefmt.Stamp `json:"time"`
	Priority int           `json:"priority"`
}

// PriorityLabel returns the display name for a priority level.
// Unknown levels render as their number.
func PriorityLabel(p int) string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return strconv.Itoa(p)
	}
}

// ValidPriority reports whether p is a supported priority level.
func ValidPriority(p int) bool {
	return p >= PriorityHigh && p <= PriorityLow
}
