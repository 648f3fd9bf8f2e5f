package engine

import (
	"sync"
	"time"
)

// Clock is injectable so timer behavior can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewClock returns the wall clock.
func NewClock() Clock { return realClock{} }

// Scheduler runs cancellable one-shot tasks keyed by room+purpose.
// Scheduling an existing key replaces its pending timer, which is how a new
// bid preempts the prior auction deadline and a reconnect preempts eviction.
type Scheduler interface {
	Schedule(key string, d time.Duration, fn func())
	Cancel(key string)
}

// TimerScheduler is the production Scheduler on top of time.AfterFunc.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[string]*time.Timer)}
}

func (ts *TimerScheduler) Schedule(key string, d time.Duration, fn func()) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if t, ok := ts.timers[key]; ok {
		t.Stop()
	}
	ts.timers[key] = time.AfterFunc(d, func() {
		ts.mu.Lock()
		delete(ts.timers, key)
		ts.mu.Unlock()
		fn()
	})
}

func (ts *TimerScheduler) Cancel(key string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if t, ok := ts.timers[key]; ok {
		t.Stop()
		delete(ts.timers, key)
	}
}
