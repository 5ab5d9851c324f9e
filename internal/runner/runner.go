// Package runner executes the shell commands embedded in task names.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// shellPath is the shell used to run commands. Overridden in tests.
var shellPath = "sh"

// Run executes command through the shell and captures both streams.
// Failures never propagate as errors: a command that could not run or
// was cut off by ctx reports the cause through the stderr string, so
// the follow-up notification always has output and error text to show.
func Run(ctx context.Context, command string) (stdout, stderr string) {
	cmd := exec.CommandContext(ctx, shellPath, "-c", command) //nolint:gosec // running user-authored commands is the feature

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	if err == nil {
		return stdout, stderr
	}

	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		stderr = "command interrupted: " + ctx.Err().Error()
	case errors.As(err, &exitErr):
		// Non-zero exit: the captured stderr already tells the story.
	default:
		// The command never started (missing shell, fork failure).
		stderr = err.Error()
	}

	return stdout, stderr
}
