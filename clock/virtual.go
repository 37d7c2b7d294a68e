// Copyright 2026 The JazzPetri Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package clock

import (
	"sync"
	"time"
)

// VirtualClock provides a Clock implementation with manual time control for testing.
// Time only advances when explicitly commanded via AdvanceTo, AdvanceBy or Drain.
//
// Scheduled callbacks are queued and run only from RunPending, Drain,
// AdvanceBy and AdvanceTo, always on the calling goroutine and never while
// the clock's mutex is held, so a callback may schedule or revoke further
// callbacks. Callbacks due at the same instant run in the order they were
// scheduled.
//
// Example:
//
//	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
//	clk := clock.NewVirtualClock(start)
//
//	clk.Schedule(5*time.Second, func() { fmt.Println("fired") })
//	clk.RunPending()          // nothing, not due yet
//	clk.AdvanceBy(5 * time.Second) // prints "fired"
type VirtualClock struct {
	mu        sync.RWMutex
	current   time.Time
	timers    []*virtualTimer
	sleeps    []*virtualSleep
	callbacks []*virtualCallback
	seq       uint64
}

// virtualTimer represents a pending timer created by After().
type virtualTimer struct {
	deadline time.Time
	ch       chan time.Time
	fired    bool
}

// virtualSleep represents a goroutine blocked in Sleep().
type virtualSleep struct {
	deadline time.Time
	ch       chan struct{}
	fired    bool
}

// virtualCallback is a function queued by Schedule. It doubles as the Handle.
type virtualCallback struct {
	deadline time.Time
	seq      uint64
	fn       func()
}

// NewVirtualClock creates a new virtual clock starting at the specified time.
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{
		current:   start,
		timers:    make([]*virtualTimer, 0),
		sleeps:    make([]*virtualSleep, 0),
		callbacks: make([]*virtualCallback, 0),
	}
}

// Now returns the current virtual time.
func (v *VirtualClock) Now() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// After returns a channel that receives the current time after duration d.
// If the deadline is not in the future the channel fires immediately.
func (v *VirtualClock) After(d time.Duration) <-chan time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()

	deadline := v.current.Add(d)
	ch := make(chan time.Time, 1)

	timer := &virtualTimer{
		deadline: deadline,
		ch:       ch,
	}

	if !deadline.After(v.current) {
		timer.ch <- v.current
		close(timer.ch)
		timer.fired = true
	} else {
		v.timers = append(v.timers, timer)
	}

	return ch
}

// Sleep blocks the current goroutine until the virtual time is advanced
// past the sleep deadline. If duration is <= 0, Sleep returns immediately.
func (v *VirtualClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}

	v.mu.Lock()
	sleep := &virtualSleep{
		deadline: v.current.Add(d),
		ch:       make(chan struct{}),
	}
	v.sleeps = append(v.sleeps, sleep)
	v.mu.Unlock()

	<-sleep.ch
}

// Schedule queues fn to run once the virtual time reaches now+d.
// fn never runs inside Schedule, even when d <= 0; a zero-delay callback runs
// on the next RunPending, Drain, AdvanceBy or AdvanceTo call.
func (v *VirtualClock) Schedule(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.seq++
	cb := &virtualCallback{
		deadline: v.current.Add(d),
		seq:      v.seq,
		fn:       fn,
	}
	v.callbacks = append(v.callbacks, cb)
	return cb
}

// Revoke removes a queued callback. It is a no-op for handles that already
// ran, were revoked, or were not produced by this clock.
func (v *VirtualClock) Revoke(h Handle) {
	cb, ok := h.(*virtualCallback)
	if !ok || cb == nil {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	for i, queued := range v.callbacks {
		if queued == cb {
			v.callbacks = append(v.callbacks[:i], v.callbacks[i+1:]...)
			return
		}
	}
}

// RunPending runs every callback whose deadline has been reached, including
// zero-delay callbacks scheduled by the callbacks it runs. Virtual time does
// not move. Returns the number of callbacks run.
func (v *VirtualClock) RunPending() int {
	ran := 0
	for {
		v.mu.Lock()
		cb := v.popDue(v.current)
		v.mu.Unlock()

		if cb == nil {
			return ran
		}
		cb.fn()
		ran++
	}
}

// Drain runs queued callbacks in deadline order, jumping virtual time forward
// to each callback's deadline, until the queue is empty or max callbacks have
// run. A max <= 0 means no limit. Returns the number of callbacks run.
func (v *VirtualClock) Drain(max int) int {
	ran := 0
	for max <= 0 || ran < max {
		v.mu.Lock()
		next := v.earliest()
		if next == nil {
			v.mu.Unlock()
			return ran
		}
		if next.deadline.After(v.current) {
			v.current = next.deadline
			v.fireTimersAndSleeps()
		}
		cb := v.popDue(v.current)
		v.mu.Unlock()

		cb.fn()
		ran++
	}
	return ran
}

// AdvanceTo advances the virtual clock to the specified time. Callbacks due
// on the way run in deadline order with Now() set to their deadline; timers
// and sleeps whose deadlines have been reached fire.
//
// If the target time is not after the current time, AdvanceTo is a no-op.
func (v *VirtualClock) AdvanceTo(targetTime time.Time) {
	v.mu.Lock()
	if !targetTime.After(v.current) {
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()

	v.advance(targetTime)
}

// AdvanceBy advances the virtual clock by the specified duration.
// This is equivalent to calling AdvanceTo(clock.Now().Add(d)).
//
// If duration is <= 0, AdvanceBy is a no-op.
func (v *VirtualClock) AdvanceBy(d time.Duration) {
	if d <= 0 {
		return
	}
	v.advance(v.Now().Add(d))
}

func (v *VirtualClock) advance(target time.Time) {
	for {
		v.mu.Lock()
		next := v.earliest()
		if next == nil || next.deadline.After(target) {
			if target.After(v.current) {
				v.current = target
			}
			v.fireTimersAndSleeps()
			v.mu.Unlock()
			return
		}
		if next.deadline.After(v.current) {
			v.current = next.deadline
			v.fireTimersAndSleeps()
		}
		cb := v.popDue(v.current)
		v.mu.Unlock()

		cb.fn()
	}
}

// earliest returns the queued callback with the smallest (deadline, seq).
// Must be called with mutex locked.
func (v *VirtualClock) earliest() *virtualCallback {
	var best *virtualCallback
	for _, cb := range v.callbacks {
		if best == nil || cb.deadline.Before(best.deadline) ||
			(cb.deadline.Equal(best.deadline) && cb.seq < best.seq) {
			best = cb
		}
	}
	return best
}

// popDue removes and returns the earliest callback due at or before now,
// or nil. Must be called with mutex locked.
func (v *VirtualClock) popDue(now time.Time) *virtualCallback {
	cb := v.earliest()
	if cb == nil || cb.deadline.After(now) {
		return nil
	}
	for i, queued := range v.callbacks {
		if queued == cb {
			v.callbacks = append(v.callbacks[:i], v.callbacks[i+1:]...)
			break
		}
	}
	return cb
}

// fireTimersAndSleeps fires all timers and sleeps whose deadlines have been reached.
// Must be called with mutex locked.
func (v *VirtualClock) fireTimersAndSleeps() {
	remainingTimers := make([]*virtualTimer, 0, len(v.timers))
	for _, timer := range v.timers {
		if !timer.fired && !timer.deadline.After(v.current) {
			timer.ch <- v.current
			close(timer.ch)
			timer.fired = true
		} else if !timer.fired {
			remainingTimers = append(remainingTimers, timer)
		}
	}
	v.timers = remainingTimers

	remainingSleeps := make([]*virtualSleep, 0, len(v.sleeps))
	for _, sleep := range v.sleeps {
		if !sleep.fired && !sleep.deadline.After(v.current) {
			close(sleep.ch)
			sleep.fired = true
		} else if !sleep.fired {
			remainingSleeps = append(remainingSleeps, sleep)
		}
	}
	v.sleeps = remainingSleeps
}

// PendingTimers returns the number of timers waiting to fire.
func (v *VirtualClock) PendingTimers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.timers)
}

// PendingSleeps returns the number of goroutines blocked in Sleep().
func (v *VirtualClock) PendingSleeps() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.sleeps)
}

// PendingCallbacks returns the number of scheduled callbacks that have not
// run and were not revoked.
func (v *VirtualClock) PendingCallbacks() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.callbacks)
}
