package app

import (
	"context"
	"sync"
)

// Loop serialises every UI mutation onto one goroutine. Other goroutines
// (ticker, input reader, network calls) only Post closures into it.
type Loop struct {
	queue    chan func()
	done     chan struct{}
	stopOnce sync.Once
	inflight sync.WaitGroup
}

func NewLoop() *Loop {
	return &Loop{
		queue: make(chan func(), 256),
		done:  make(chan struct{}),
	}
}

// Post schedules fn on the loop goroutine. It reports false once Run has
// returned, in which case fn is dropped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Go runs work off the loop and posts the closure it returns back onto it.
// A nil closure posts nothing.
func (l *Loop) Go(work func() func()) {
	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		if done := work(); done != nil {
			l.Post(done)
		}
	}()
}

// Run executes posted closures until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stopOnce.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			fn()
		}
	}
}

// Settle waits for background work and runs queued closures until nothing is
// left. It is meant for callers that drive the loop by hand instead of Run.
func (l *Loop) Settle() {
	for {
		l.inflight.Wait()
		select {
		case fn := <-l.queue:
			fn()
		default:
			return
		}
	}
}
