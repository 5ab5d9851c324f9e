package task

import "sort"

// Sort orders tasks by time then priority, the display order shared by
// every surface. Times compare as canonical strings, which matches
// chronological order for valid stamps and keeps invalid stamps (which
// compare by their preserved raw text) in a stable position.
func Sort(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ti, tj := tasks[i].Time.String(), tasks[j].Time.String()
		if ti != tj {
			return ti < tj
		}
		return tasks[i].Priority < tasks[j].Priority
	})
}

// Sorted returns a sorted copy, leaving the input order unchanged.
func Sorted(tasks []*Task) []*Task {
	out := make([]*Task, len(tasks))
	copy(out, tasks)
	Sort(out)
	return out
}
