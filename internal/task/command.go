package task

import "regexp"

// commandRe matches a task name carrying an embedded shell command,
// e.g. "-e echo hello" or "--execute backup.sh".
var commandRe = regexp.MustCompile(`^(-e|--execute)\s+(.*)$`)

// EmbeddedCommand extracts the shell command embedded in a task name.
// Returns the command text and true when the name starts with the
// -e or --execute marker.
func EmbeddedCommand(name string) (string, bool) {
	matches := commandRe.FindStringSubmatch(name)
	if len(matches) < 3 { //nolint:mnd // regex capture groups
		return "", false
	}
	return matches[2], true
}
