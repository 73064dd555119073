package storage

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce coalesces rapid successive writes from the process
// holding the file (an external editor, a build tool rewriting the
// file) into a single notification.
const defaultDebounce = 150 * time.Millisecond

// ExternalChangeWatcher watches a document's backing file for
// modifications and reports them as an ExternalChangeDetected event.
// It does not tell Document.Save's own temp-file-and-rename write
// apart from an outside change; that write is reported too. It takes
// no action on the document itself — it only notifies.
//
// Modeled directly on internal/track/watcher.go's debounced fsnotify
// loop.
type ExternalChangeWatcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	events   chan struct{}
	errors   chan error
	done     chan struct{}
	debounce time.Duration
	mu       sync.Mutex
	closed   bool
}

// NewExternalChangeWatcher creates a watcher for filePath using the
// default debounce window. The file must exist at creation time.
func NewExternalChangeWatcher(filePath string) (*ExternalChangeWatcher, error) {
	return NewExternalChangeWatcherWithDebounce(filePath, defaultDebounce)
}

// NewExternalChangeWatcherWithDebounce creates a watcher with a custom
// debounce window.
func NewExternalChangeWatcherWithDebounce(filePath string, debounce time.Duration) (*ExternalChangeWatcher, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(absPath); err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(absPath)
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()

		return nil, err
	}

	w := &ExternalChangeWatcher{
		watcher:  fsWatcher,
		filePath: absPath,
		events:   make(chan struct{}, 1),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
		debounce: debounce,
	}

	go w.loop()

	return w, nil
}

// Events returns a channel that receives a notification when the
// watched file changes externally. The channel is buffered with
// capacity 1, so only the most recent event is retained if the
// consumer is slow.
func (w *ExternalChangeWatcher) Events() <-chan struct{} {
	return w.events
}

// Errors returns a channel that receives watcher-internal errors
// (e.g. the watched directory was removed).
func (w *ExternalChangeWatcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and releases its fsnotify handle.
func (w *ExternalChangeWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()

		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)

	return w.watcher.Close()
}

func (w *ExternalChangeWatcher) loop() {
	var timer *time.Timer

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.filePath {
				continue
			}
			if !(ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0) {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.notify)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *ExternalChangeWatcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}
