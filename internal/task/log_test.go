package task

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogActivityWritesEntry(t *testing.T) {
	dir := t.TempDir()

	LogActivity(dir, "add", "buy milk", "time 2030-01-01 09:00:00")

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)

	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "add", entry.Action)
	assert.Equal(t, "buy milk", entry.Task)
	assert.False(t, entry.Timestamp.IsZero())
}

func TestAppendLogTruncatesOldEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, logFileName)

	var b strings.Builder
	for i := 0; i < maxLogEntries+5; i++ {
		b.WriteString(`{"action":"old"}` + "\n")
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))

	require.NoError(t, AppendLog(dir, LogEntry{Action: "new"}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	count := 0
	var last string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		last = scanner.Text()
		count++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, maxLogEntries, count)
	assert.Contains(t, last, `"action":"new"`)
}
