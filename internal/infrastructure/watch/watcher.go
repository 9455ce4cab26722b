// Package watch observes the review queue file so dispositions made by
// another front end (a second CLI, the desktop dialogs) still reach
// connected plugin clients as push notifications.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// QueueWatcher watches one queue file and reports coalesced changes.
type QueueWatcher struct {
	path     string
	debounce time.Duration
	onChange func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewQueueWatcher creates a watcher for the queue file at path. Rapid
// successive writes are coalesced into one callback.
func NewQueueWatcher(path string, debounce time.Duration, onChange func()) *QueueWatcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &QueueWatcher{path: path, debounce: debounce, onChange: onChange}
}

// Run starts the event loop. It blocks until the context is cancelled.
// The parent directory is watched rather than the file itself so
// atomic-rename writes are still observed.
func (w *QueueWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			w.trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (w *QueueWatcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}

func (w *QueueWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
