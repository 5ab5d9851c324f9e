package task

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/twiced-technology-gmbh/taskwatch/internal/filelock"
)

const (
	fileMode     = 0o600
	lockFileName = ".lock"
)

// ReadWarning describes a store document or entry that could not be
// parsed during lenient reading.
type ReadWarning struct {
	File string // base filename
	Err  error
}

// Store reads and writes the pending and history task documents.
type Store struct {
	tasksPath   string
	historyPath string
}

// NewStore returns a store over the given pending and history file paths.
func NewStore(tasksPath, historyPath string) *Store {
	return &Store{tasksPath: tasksPath, historyPath: historyPath}
}

// TasksPath returns the pending store path.
func (s *Store) TasksPath() string { return s.tasksPath }

// HistoryPath returns the history store path.
func (s *Store) HistoryPath() string { return s.historyPath }

// Lock acquires the advisory lock shared by every store writer. The
// returned function releases it and must be called when the
// read-modify-write cycle is done.
func (s *Store) Lock() (unlock func() error, err error) {
	return filelock.Lock(filepath.Join(filepath.Dir(s.tasksPath), lockFileName))
}

// Load reads the pending store.
// Uses lenient parsing: a missing or malformed document yields an empty
// list, and array entries that fail to decode are skipped. Both cases
// are returned as warnings so one bad entry never hides the rest.
func (s *Store) Load() ([]*Task, []ReadWarning, error) {
	return readLenient(s.tasksPath)
}

// LoadHistory reads the completed-task store with the same lenient
// parsing as Load.
func (s *Store) LoadHistory() ([]*Task, []ReadWarning, error) {
	return readLenient(s.historyPath)
}

// Save sorts the tasks and rewrites the pending store atomically, so a
// concurrent load never observes a partial write.
func (s *Store) Save(tasks []*Task) error {
	Sort(tasks)
	return writeAtomic(s.tasksPath, tasks)
}

// AppendHistory adds fired tasks to the end of the history store,
// preserving completion order. Existing entries that no longer decode
// are dropped from the rewritten document.
func (s *Store) AppendHistory(fired []*Task) error {
	existing, _, err := readLenient(s.historyPath)
	if err != nil {
		return err
	}
	return writeAtomic(s.historyPath, append(existing, fired...))
}

// readLenient parses a store document, skipping what it cannot decode.
func readLenient(path string) ([]*Task, []ReadWarning, error) {
	data, err := os.ReadFile(path) //nolint:gosec // store path from trusted config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		warn := ReadWarning{
			File: filepath.Base(path),
			Err:  fmt.Errorf("malformed store document: %w", err),
		}
		return nil, []ReadWarning{warn}, nil
	}

	var tasks []*Task
	var warnings []ReadWarning
	for i, raw := range raws {
		var t Task
		if err := json.Unmarshal(raw, &t); err != nil {
			warnings = append(warnings, ReadWarning{
				File: filepath.Base(path),
				Err:  fmt.Errorf("entry %d: %w", i+1, err),
			})
			continue
		}
		tasks = append(tasks, &t)
	}

	return tasks, warnings, nil
}

// writeAtomic serializes tasks and replaces the document via a temp
// file and rename.
func writeAtomic(path string, tasks []*Task) error {
	if tasks == nil {
		tasks = []*Task{}
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling tasks: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, fileMode); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("setting temp file mode: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}

	return nil
}
