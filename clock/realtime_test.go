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
	"sync/atomic"
	"testing"
	"time"
)

func TestRealTimeClock_Now(t *testing.T) {
	clock := NewRealTimeClock()

	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("clock.Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestRealTimeClock_After(t *testing.T) {
	clock := NewRealTimeClock()
	duration := 20 * time.Millisecond

	start := time.Now()
	<-clock.After(duration)

	if elapsed := time.Since(start); elapsed < duration {
		t.Errorf("After() fired too early: elapsed=%v, expected>=%v", elapsed, duration)
	}
}

func TestRealTimeClock_Schedule(t *testing.T) {
	clock := NewRealTimeClock()
	done := make(chan struct{})

	start := time.Now()
	clock.Schedule(20*time.Millisecond, func() { close(done) })

	select {
	case <-done:
		if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
			t.Errorf("callback ran too early: %v", elapsed)
		}
	case <-time.After(time.Second):
		t.Fatal("scheduled callback never ran")
	}
}

func TestRealTimeClock_Revoke(t *testing.T) {
	clock := NewRealTimeClock()
	var ran atomic.Bool

	h := clock.Schedule(30*time.Millisecond, func() { ran.Store(true) })
	clock.Revoke(h)
	clock.Revoke(nil)

	time.Sleep(60 * time.Millisecond)
	if ran.Load() {
		t.Error("revoked callback ran")
	}
}

func TestRealTimeClock_ImplementsClockInterface(t *testing.T) {
	var _ Clock = (*RealTimeClock)(nil)
}
