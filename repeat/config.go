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

package repeat

import (
	"time"

	"github.com/jazzpetri/rearm/event"
	"github.com/jazzpetri/rearm/state"
)

// DefaultName is used when Config.Name is empty.
const DefaultName = "repeat"

// Config holds the optional settings of a repeating task.
// The zero value is valid: unnamed, zero interval, no deadline, no event log.
type Config struct {
	// Name labels logs, spans and events. Defaults to DefaultName.
	Name string

	// Interval is the delay handed to the scheduler before every execution,
	// the first one included. The next delay starts only after the previous
	// execution has returned. Zero means "as soon as the scheduler allows".
	// Must not be negative.
	Interval time.Duration

	// StopAfter cancels the task once this much time has passed since Start.
	// Zero disables the deadline.
	StopAfter time.Duration

	// EventLog receives every lifecycle event. Nil disables event recording.
	EventLog state.EventLog

	// Events receives the task's outcome, published synchronously: a
	// "task.completed", "task.failed" or "task.cancelled" event when the task
	// becomes terminal, plus "task.failed" for an action that fails after an
	// explicit Cancel. "task.failed" carries the *ActionError in Event.Err.
	// Nil disables publishing.
	Events event.EventSystem

	// OnComplete is called once the task reaches StateCompleted, before
	// Done is closed.
	OnComplete func(t *Task)

	// OnFailure is called with the *ActionError when the action fails.
	// It runs synchronously inside the failing execution step, after the task
	// has moved to StateCancelled and before Done is closed.
	OnFailure func(err error)
}
