package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunCapturesStdout(t *testing.T) {
	stdout, stderr := Run(context.Background(), "echo hello")

	assert.Equal(t, "hello\n", stdout)
	assert.Empty(t, stderr)
}

func TestRunCapturesStderrOnFailure(t *testing.T) {
	stdout, stderr := Run(context.Background(), "echo oops >&2; exit 3")

	assert.Empty(t, stdout)
	assert.Equal(t, "oops\n", stderr)
}

func TestRunTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, stderr := Run(ctx, "sleep 5")

	assert.Contains(t, stderr, "command interrupted")
}

func TestRunSpawnFailure(t *testing.T) {
	orig := shellPath
	shellPath = "/definitely/not/a/shell"
	t.Cleanup(func() { shellPath = orig })

	stdout, stderr := Run(context.Background(), "echo hello")

	assert.Empty(t, stdout)
	assert.NotEmpty(t, stderr)
}
