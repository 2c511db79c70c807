package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/triage/internal/logger"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 500 * time.Millisecond

// ErrWatcherClosed is returned when Watch is called after Close.
var ErrWatcherClosed = errors.New("corpus watcher closed")

// Watcher signals when the text files of a corpus folder change.
// Bursts of events within the debounce window produce one signal.
type Watcher struct {
	dir      string
	debounce time.Duration

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for dir. A non-positive debounce uses DefaultDebounce.
func NewWatcher(dir string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dir: dir, debounce: debounce}
}

// Watch starts watching and returns a channel that receives one value per
// settled batch of changes. The channel closes when ctx is cancelled or the
// watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrWatcherClosed
	}
	if w.watcher != nil {
		return nil, errors.New("corpus watcher already started")
	}

	info, err := os.Stat(w.dir)
	if err != nil {
		return nil, fmt.Errorf("corpus folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus folder: %s is not a directory", w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.watcher = fsw

	changes := make(chan struct{}, 1)
	go w.loop(ctx, fsw, changes)

	return changes, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, changes chan<- struct{}) {
	defer close(changes)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("corpus change: %s %s", event.Op, event.Name)
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("corpus watcher: %v", err)

		case <-timer.C:
			pending = false
			select {
			case changes <- struct{}{}:
			default:
				// A signal is already queued.
			}
		}
	}
}

// relevant reports whether the event touches a corpus document.
// Chmod alone does not change content.
func relevant(event fsnotify.Event) bool {
	if !isCorpusFile(filepath.Base(event.Name)) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// Run calls fn after every settled batch of changes until ctx is cancelled.
// Errors from fn are logged and do not stop watching.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	for range changes {
		if err := fn(ctx); err != nil {
			logger.Error("re-ingest after corpus change: %v", err)
		}
	}
	return ctx.Err()
}
