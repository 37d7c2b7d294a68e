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

// Package clock provides the time and scheduling abstractions used by rearm.
//
// A repeating task never sleeps between runs. It hands a callback to a
// Scheduler and returns; the scheduler calls back later, and the task re-arms
// itself only after the current run has finished. The Clock interface bundles
// that scheduling contract with the usual Now/After/Sleep operations so the
// same value can be threaded through an ExecutionContext.
//
// Two implementations are provided:
//   - RealTimeClock delegates to the time package (time.AfterFunc for Schedule)
//   - VirtualClock keeps callbacks in a queue that only runs when the owner
//     calls RunPending, Drain, AdvanceBy or AdvanceTo
//
// Example usage in production:
//
//	clk := clock.NewRealTimeClock()
//	h := clk.Schedule(2*time.Second, func() { fmt.Println("tick") })
//	clk.Revoke(h) // changed our mind
//
// Example usage in tests:
//
//	clk := clock.NewVirtualClock(start)
//	clk.Schedule(0, func() { fmt.Println("tick") })
//	clk.RunPending() // prints "tick" on the calling goroutine
package clock

import "time"

// Handle identifies a callback accepted by Scheduler.Schedule.
// Handles are opaque; the only valid use is passing one back to Revoke.
type Handle interface{}

// Scheduler is a delayed-execution facility.
//
// Schedule must never invoke fn before returning; fn runs asynchronously,
// no earlier than d after the call. A negative d is treated as zero.
// Revoke prevents a not-yet-run callback from running. Revoking a handle that
// already fired, was already revoked, is nil, or came from another scheduler
// is a no-op.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Handle
	Revoke(h Handle)
}

// Clock abstracts time operations for testing and production.
// Implementations must be safe for concurrent use by multiple goroutines.
type Clock interface {
	Scheduler

	// Now returns the current time according to this clock.
	Now() time.Time

	// After returns a channel that receives the current time after duration d.
	// The channel receives exactly once.
	After(d time.Duration) <-chan time.Time

	// Sleep pauses the current goroutine for at least duration d.
	Sleep(d time.Duration)
}
