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

import "time"

// RealTimeClock provides a production Clock implementation using actual wall-clock time.
// All operations delegate directly to Go's time package.
//
// Scheduled callbacks run on their own goroutine (time.AfterFunc), so callers
// that share state with a callback must synchronize.
//
// RealTimeClock is safe for concurrent use by multiple goroutines as it maintains no state.
type RealTimeClock struct{}

// NewRealTimeClock creates a new real-time clock for production use.
func NewRealTimeClock() *RealTimeClock {
	return &RealTimeClock{}
}

// Now returns the current wall-clock time by delegating to time.Now().
func (r *RealTimeClock) Now() time.Time {
	return time.Now()
}

// After delegates to time.After().
func (r *RealTimeClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Sleep delegates to time.Sleep().
func (r *RealTimeClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// Schedule arranges for fn to run on its own goroutine after d.
// The returned handle wraps the underlying *time.Timer.
func (r *RealTimeClock) Schedule(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	return time.AfterFunc(d, fn)
}

// Revoke stops the timer behind h. Unknown handles are ignored.
func (r *RealTimeClock) Revoke(h Handle) {
	if t, ok := h.(*time.Timer); ok && t != nil {
		t.Stop()
	}
}
