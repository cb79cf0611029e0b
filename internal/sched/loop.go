// Package sched provides a single-consumer event loop with periodic task
// scheduling. All session state transitions run on one loop goroutine, so
// components scheduled here never need their own locking. Background work
// (blocking reads, process waits) stays off the loop and communicates
// through queues.
package sched

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Loop executes submitted functions serially on a single goroutine.
type Loop struct {
	tasks   chan func()
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
	logger  *slog.Logger
}

// NewLoop creates a loop. Call Start before submitting work.
func NewLoop(logger *slog.Logger) *Loop {
	return &Loop{
		tasks:   make(chan func(), 256),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  logger,
	}
}

// Start launches the consumer goroutine.
func (l *Loop) Start() {
	go func() {
		defer close(l.stopped)
		for {
			select {
			case fn := <-l.tasks:
				fn()
			case <-l.quit:
				// Drain tasks already queued so no submitted work is lost.
				for {
					select {
					case fn := <-l.tasks:
						fn()
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop shuts the loop down after draining queued tasks. Idempotent.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.quit) })
	<-l.stopped
}

// Submit enqueues fn for execution on the loop goroutine. Returns false if
// the loop is shutting down and the task was dropped.
func (l *Loop) Submit(fn func()) bool {
	select {
	case <-l.quit:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.quit:
		return false
	}
}

// Run submits fn and blocks until it has executed. Used by callers outside
// the loop that need a synchronous result, e.g. shutdown hooks.
func (l *Loop) Run(fn func()) bool {
	done := make(chan struct{})
	ok := l.Submit(func() {
		defer close(done)
		fn()
	})
	if !ok {
		return false
	}
	<-done
	return true
}

// Ticker is a cancellable periodic task. Stop may be called from any
// goroutine, including from inside the task itself.
type Ticker struct {
	stopped atomic.Bool
	done    chan struct{}
	once    sync.Once
}

// Stop cancels the ticker. A tick already queued on the loop observes the
// cancellation and becomes a no-op, so no callback fires after Stop returns
// when called from the loop goroutine. Idempotent.
func (t *Ticker) Stop() {
	t.stopped.Store(true)
	t.once.Do(func() { close(t.done) })
}

// Stopped reports whether Stop has been called.
func (t *Ticker) Stopped() bool {
	return t.stopped.Load()
}

// Every schedules fn to run on the loop at the given interval until the
// returned Ticker is stopped or the loop shuts down.
func (l *Loop) Every(interval time.Duration, fn func()) *Ticker {
	t := &Ticker{done: make(chan struct{})}
	go func() {
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				if !l.Submit(func() {
					if t.stopped.Load() {
						return
					}
					fn()
				}) {
					return
				}
			case <-t.done:
				return
			case <-l.quit:
				return
			}
		}
	}()
	return t
}
