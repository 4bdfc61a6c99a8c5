// Package preview serves a live Markdown preview to a browser and keeps its scroll position
// in sync with an editor.
//
// All scroll-sync state is owned by a single Loop goroutine. HTTP handlers and file watchers
// never touch the session directly; they submit closures to the loop.
package preview

import (
	"context"
	"errors"
	"sync"
)

// ErrStopped is returned when work is submitted to a loop that is no longer running.
var ErrStopped = errors.New("preview loop stopped")

// taskBuffer bounds the number of queued closures before Submit blocks.
const taskBuffer = 64

// ContentFunc applies a new document source. It always runs on the loop goroutine.
type ContentFunc func(ctx context.Context, source []byte)

// Loop executes closures one at a time on a single goroutine.
//
// Content updates are coalesced: only the newest source submitted while a render is
// pending is applied.
type Loop struct {
	tasks   chan func()
	wake    chan struct{}
	stopped chan struct{}
	apply   ContentFunc

	mu      sync.Mutex
	pending []byte
	queued  bool

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewLoop creates a loop that hands content updates to apply.
func NewLoop(apply ContentFunc) *Loop {
	return &Loop{
		tasks:   make(chan func(), taskBuffer),
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
		apply:   apply,
	}
}

// Run processes work until ctx is done. It returns nil on cancellation and
// ErrStopped if the loop was already run.
func (l *Loop) Run(ctx context.Context) error {
	started := false
	l.startOnce.Do(func() { started = true })
	if !started {
		return ErrStopped
	}
	defer l.stopOnce.Do(func() { close(l.stopped) })

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.tasks:
			fn()
		case <-l.wake:
			if source, ok := l.take(); ok && l.apply != nil {
				l.apply(ctx, source)
			}
		}
	}
}

// Submit queues fn for execution on the loop goroutine.
func (l *Loop) Submit(fn func()) error {
	select {
	case <-l.stopped:
		return ErrStopped
	default:
	}

	select {
	case l.tasks <- fn:
		return nil
	case <-l.stopped:
		return ErrStopped
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := l.Submit(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrStopped
	}
}

// Content replaces the pending source. Sources superseded before the loop picks
// them up are dropped.
func (l *Loop) Content(source []byte) error {
	select {
	case <-l.stopped:
		return ErrStopped
	default:
	}

	l.mu.Lock()
	l.pending = source
	l.queued = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}

func (l *Loop) take() ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.queued {
		return nil, false
	}
	source := l.pending
	l.pending = nil
	l.queued = false
	return source, true
}
