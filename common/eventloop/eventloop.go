// Package eventloop provides the single execution context that every call
// into the guest runs on.
package eventloop

import (
	"context"
	"errors"
	"sync"
)

// ErrStopped is returned by Run after Stop is called.
var ErrStopped = errors.New("event loop stopped")

// Task runs on the loop goroutine. A non-nil error stops the loop.
type Task func(ctx context.Context) error

// Poster queues tasks onto a Loop.
type Poster interface {
	Post(t Task) bool
}

// Loop runs posted tasks one at a time, in order. Post may be called from any
// goroutine, including from inside a running task.
type Loop struct {
	mu      sync.Mutex
	queue   []Task
	stopped bool
	wake    chan struct{}
}

func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
	}
}

// Post enqueues t. It never blocks. Tasks posted after Stop are dropped and
// Post reports false.
func (l *Loop) Post(t Task) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, t)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Stop makes Run return ErrStopped once the current task finishes. Pending
// tasks are discarded.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.queue = nil
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes tasks until ctx is done, Stop is called or a task fails.
func (l *Loop) Run(ctx context.Context) error {
	for {
		t, stopped := l.next()
		if stopped {
			return ErrStopped
		}
		if t != nil {
			if err := t(ctx); err != nil {
				l.Stop()
				return err
			}
			continue
		}
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (Task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return nil, true
	}
	if len(l.queue) == 0 {
		return nil, false
	}
	t := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return t, false
}
