// Package solver implements the Driver (spec.md §4.8): load a problem,
// build the initial placement, run the SA, finalize, and hand back the
// best placement found even on a timeout.
package solver

import (
	"sync"
	"sync/atomic"
	"time"
)

// TimeoutManager is the polled stop flag plus optional emergency callback
// of spec.md §4.8/§5: a watchdog that flips an atomic flag after the main
// timeout, then — if cooperative shutdown hasn't finished within the
// grace window — runs an emergency callback. It uses a single goroutine
// and time.Timer rather than a dedicated thread with sleep-based polling,
// matching the single-atomic-plus-no-locks model spec.md §5 specifies.
type TimeoutManager struct {
	stopped   atomic.Bool
	timeout   time.Duration
	grace     time.Duration
	emergency func()

	done     chan struct{}
	doneOnce sync.Once
}

// NewTimeoutManager returns a TimeoutManager. timeout <= 0 disables the
// watchdog entirely (the run is expected to terminate on its own). A nil
// emergency callback means "do nothing" if the grace window elapses.
func NewTimeoutManager(timeout, grace time.Duration, emergency func()) *TimeoutManager {
	return &TimeoutManager{
		timeout:   timeout,
		grace:     grace,
		emergency: emergency,
		done:      make(chan struct{}),
	}
}

// Start begins the watchdog. Safe to call at most once.
func (tm *TimeoutManager) Start() {
	if tm.timeout <= 0 {
		return
	}
	go func() {
		timer := time.NewTimer(tm.timeout)
		defer timer.Stop()
		select {
		case <-timer.C:
			tm.stopped.Store(true)
			tm.watchGrace()
		case <-tm.done:
		}
	}()
}

func (tm *TimeoutManager) watchGrace() {
	if tm.grace <= 0 {
		tm.fire()
		return
	}
	timer := time.NewTimer(tm.grace)
	defer timer.Stop()
	select {
	case <-timer.C:
		tm.fire()
	case <-tm.done:
	}
}

func (tm *TimeoutManager) fire() {
	if tm.emergency != nil {
		tm.emergency()
	}
}

// Stopped reports whether the cooperative timeout has fired. The SA polls
// this at the top of each temperature level and periodically inside the
// per-temperature loop (spec.md §5).
func (tm *TimeoutManager) Stopped() bool { return tm.stopped.Load() }

// MarkDone signals that the run finished (cooperatively or not), stopping
// the watchdog goroutine(s) and suppressing the emergency callback if it
// hasn't fired yet.
func (tm *TimeoutManager) MarkDone() {
	tm.doneOnce.Do(func() { close(tm.done) })
}
