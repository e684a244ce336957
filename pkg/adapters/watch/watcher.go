// Package watch reports external modifications of a single project file.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a burst of writes is reported.
const DefaultDebounce = 50 * time.Millisecond

// Op is the kind of change observed on the watched file.
type Op string

const (
	OpWrite  Op = "write"
	OpRemove Op = "remove"
)

// Event reports a change of the watched file.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Op, e.Path)
}

// Watcher observes one file. The parent directory is watched so that atomic
// replacements (write temp, rename) are seen as writes of the target.
type Watcher struct {
	path     string
	delay    time.Duration
	logger   *slog.Logger
	onError  func(error)
	mu       sync.Mutex
	active   bool
	started  bool
	lastSeen time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithErrorHandler receives fsnotify errors and panics from the event loop.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// New creates a watcher for path.
func New(path string, opts ...Option) *Watcher {
	w := &Watcher{path: filepath.Clean(path), delay: DefaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Start begins watching. The returned channel is closed when ctx is done.
// A watcher can be started once.
func (w *Watcher) Start(ctx context.Context) (<-chan Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil, fmt.Errorf("watcher for %s already started", w.path)
	}
	w.started = true
	w.mu.Unlock()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	out := make(chan Event)
	w.setActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		return w.run(ctx, fw, out)
	}, lifecycle.WithErrorHandler(w.handleError))

	return out, nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, out chan Event) (err error) {
	deb := newDebouncer(w.delay)
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.logger != nil {
				if w.logger.Enabled(ctx, slog.LevelDebug) {
					w.logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
				} else {
					w.logger.Error("watcher panic", "error", err)
				}
			}
		}
		// The debouncer must be quiet before out is closed.
		deb.stopAndWait(5 * time.Second)
		close(out)
		_ = fw.Close()
		w.setActive(false)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			op, relevant := w.classify(ev)
			if !relevant {
				continue
			}
			if w.logger != nil {
				w.logger.Debug("file event", "name", ev.Name, "op", ev.Op.String())
			}
			deb.add(Event{Path: w.path, Op: op, Time: time.Now()}, func(e Event) {
				defer func() {
					// out may already be closed if shutdown timed out.
					_ = recover()
				}()
				select {
				case out <- e:
					w.recordSeen(e.Time)
				case <-ctx.Done():
				}
			})

		case werr, ok := <-fw.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.handleError(werr)
		}
	}
}

// classify maps a directory event to a change of the watched file.
func (w *Watcher) classify(ev fsnotify.Event) (Op, bool) {
	if filepath.Clean(ev.Name) != w.path {
		return "", false
	}
	switch {
	case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
		return OpWrite, true
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return OpRemove, true
	}
	return "", false
}

func (w *Watcher) handleError(err error) {
	if w.logger != nil {
		w.logger.Error("watcher error", "path", w.path, "error", err)
	}
	if w.onError != nil {
		w.onError(err)
	}
}

func (w *Watcher) setActive(active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = active
}

func (w *Watcher) recordSeen(t time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastSeen = t
}
