package application

import (
	"context"

	"rudiwatch/internal/ports"
)

// Loop serializes watcher events and ad-hoc tasks on a single goroutine.
// Whatever runs inside the loop may touch session state without locking.
type Loop struct {
	tasks   chan func()
	stopped chan struct{}
}

// NewLoop creates a loop; call Run to start it
func NewLoop() *Loop {
	return &Loop{
		tasks:   make(chan func()),
		stopped: make(chan struct{}),
	}
}

// Run processes events and tasks until ctx is cancelled. A closed events
// channel is ignored; tasks keep running.
func (l *Loop) Run(ctx context.Context, events <-chan ports.FileEvent, handle func(ports.FileEvent)) error {
	defer close(l.stopped)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			handle(ev)
		case task := <-l.tasks:
			task()
		}
	}
}

// Do runs fn on the loop goroutine and waits until it returns
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		fn()
	}

	select {
	case l.tasks <- task:
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
