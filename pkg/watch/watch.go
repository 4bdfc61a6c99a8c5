// Package watch follows a single Markdown file and reports new content.
//
// The file's directory is watched rather than the file itself, so editors that save by
// writing a temporary file and renaming it over the original keep being followed.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yaklabco/mdsync/pkg/fsutil"
)

const (
	// DefaultDebounce is the quiet period after the last event before the file is read.
	DefaultDebounce = 100 * time.Millisecond

	// DefaultPollInterval is used when file notifications are unavailable.
	DefaultPollInterval = 500 * time.Millisecond
)

// Handler receives the file content after each change. It is called from the
// goroutine running Watcher.Run.
type Handler func(content []byte)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values select DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithPolling forces stat polling at the given interval instead of file notifications.
func WithPolling(interval time.Duration) Option {
	return func(w *Watcher) {
		w.poll = true
		if interval > 0 {
			w.interval = interval
		}
	}
}

// WithErrorHandler receives non-fatal errors such as read failures or notification
// overflows.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher follows one file.
type Watcher struct {
	path     string
	debounce time.Duration
	interval time.Duration
	poll     bool
	onError  func(error)

	stamp fsutil.Stamp
}

// New creates a watcher for path.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run reads the file, hands it to fn, then calls fn again whenever the content changes.
// It blocks until ctx is done, returning nil on cancellation. If notifications cannot be
// set up Run falls back to polling.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	content, stamp, err := fsutil.ReadFile(ctx, w.path)
	if err != nil {
		return err
	}
	w.stamp = stamp
	fn(content)

	if w.poll {
		return w.runPolling(ctx, fn)
	}

	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		w.report(fmt.Errorf("file notifications unavailable, polling: %w", err))
		return w.runPolling(ctx, fn)
	}
	defer notifier.Close()

	if err := notifier.Add(filepath.Dir(w.path)); err != nil {
		w.report(fmt.Errorf("watch %s, polling: %w", filepath.Dir(w.path), err))
		return w.runPolling(ctx, fn)
	}

	return w.runNotify(ctx, notifier, fn)
}

func (w *Watcher) runNotify(ctx context.Context, notifier *fsnotify.Watcher, fn Handler) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-notifier.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-notifier.Errors:
			if !ok {
				return nil
			}
			w.report(err)
			// Events may have been dropped; re-check the file.
			timer.Reset(w.debounce)
		case <-timer.C:
			w.reload(ctx, fn)
		}
	}
}

func (w *Watcher) runPolling(ctx context.Context, fn Handler) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			changed, err := fsutil.Changed(ctx, w.stamp)
			if err != nil {
				w.report(err)
				continue
			}
			if changed {
				w.reload(ctx, fn)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}

// reload reads the file and calls fn if its content differs from the last delivery.
// A missing file is not an error: it is usually mid-replace and a Create follows.
func (w *Watcher) reload(ctx context.Context, fn Handler) {
	content, stamp, err := fsutil.ReadFile(ctx, w.path)
	if err != nil {
		if !errors.Is(err, fsutil.ErrNotFound) && ctx.Err() == nil {
			w.report(err)
		}
		return
	}

	unchanged := w.stamp.Matches(content)
	w.stamp = stamp
	if unchanged {
		return
	}
	fn(content)
}

func (w *Watcher) report(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}
