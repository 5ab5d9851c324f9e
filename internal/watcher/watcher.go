// Package watcher provides debounced file watching for the taskwatch
// directory. The live view and the daemon both use it to pick up store
// rewrites and config edits made by other processes.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay is the time to wait after the last file event before
// triggering the callback. An atomic store rewrite produces several
// events in quick succession; this coalesces them into one reload.
const debounceDelay = 100 * time.Millisecond

// Watcher invokes a callback, debounced, when any of a set of files
// changes. The parent directories are watched rather than the files
// themselves: store rewrites go through a temp file and rename, which
// would silently drop a per-file watch.
type Watcher struct {
	fsw      *fsnotify.Watcher
	names    map[string]struct{}
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
}

// New creates a Watcher over the given files. Events for other files
// in the same directories, including rewrite temp files, are ignored.
func New(files []string, callback func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	names := make(map[string]struct{}, len(files))
	dirs := make(map[string]struct{})
	for _, f := range files {
		names[filepath.Base(f)] = struct{}{}
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for d := range dirs {
		if err := fsw.Add(d); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	return &Watcher{
		fsw:      fsw,
		names:    names,
		callback: callback,
	}, nil
}

// Run starts the watch loop. It blocks until the context is canceled.
// Errors from the underlying watcher are passed to the optional errFn
// callback.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if _, watched := w.names[filepath.Base(event.Name)]; !watched {
				continue
			}
			w.debounce()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, w.callback)
}
