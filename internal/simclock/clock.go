// Package simclock schedules delayed and repeating work against a clock that
// tests can replace with a manually advanced one.
package simclock

import (
	"sync"
	"time"
)

// Clock is the source of time and delayed callbacks for simulated work.
type Clock interface {
	Now() time.Time
	// AfterFunc runs f once after d. The returned Timer stops it.
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// call stopped a pending callback.
	Stop() bool
}

type realClock struct{}

// Real returns a Clock backed by the runtime timer.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Task is a cancellable repeating job scheduled on a Clock.
type Task struct {
	clock    Clock
	interval time.Duration
	fn       func() bool

	mu      sync.Mutex
	timer   Timer
	stopped bool
}

// Every runs fn every interval until fn returns false or Stop is called.
// The first run happens one interval after the call.
func Every(clock Clock, interval time.Duration, fn func() bool) *Task {
	t := &Task{clock: clock, interval: interval, fn: fn}
	t.mu.Lock()
	t.timer = clock.AfterFunc(interval, t.tick)
	t.mu.Unlock()
	return t
}

func (t *Task) tick() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	if !t.fn() {
		t.Stop()
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.stopped {
		t.timer = t.clock.AfterFunc(t.interval, t.tick)
	}
}

// Stop cancels future runs. It is safe to call more than once.
func (t *Task) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
}

// Stopped reports whether the task will run again.
func (t *Task) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
