package game

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrLoopStopped = errors.New("event loop stopped")

type job struct {
	fn   func()
	done chan struct{}
}

// Loop serialises every room mutation onto one goroutine. Intents from any
// connection are handled to completion, in arrival order, before the next one
// starts, so rooms and the registry need no locks.
type Loop struct {
	jobs     chan job
	stopped  chan struct{}
	interval time.Duration
	tick     func(now time.Time)
}

// NewLoop returns a loop that also calls tick every interval, on the loop
// goroutine. A zero interval disables ticking.
func NewLoop(interval time.Duration, tick func(now time.Time)) *Loop {
	return &Loop{
		jobs:     make(chan job, 256),
		stopped:  make(chan struct{}),
		interval: interval,
		tick:     tick,
	}
}

func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)

	var ticks <-chan time.Time
	if l.interval > 0 && l.tick != nil {
		t := time.NewTicker(l.interval)
		defer t.Stop()
		ticks = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case j := <-l.jobs:
			l.run(j.fn)
			close(j.done)
		case now := <-ticks:
			l.run(func() { l.tick(now.UTC()) })
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if v := recover(); v != nil {
			log.Error().Interface("panic", v).Msg("event loop job panicked")
		}
	}()
	fn()
}

// Do runs fn on the loop and waits for it. If ctx ends after fn was queued it
// may still run later.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	j := job{fn: fn, done: make(chan struct{})}
	select {
	case l.jobs <- j:
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-j.done:
		return nil
	case <-l.stopped:
		select {
		case <-j.done:
			return nil
		default:
			return ErrLoopStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
