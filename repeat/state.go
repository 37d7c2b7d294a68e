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

import "fmt"

// State is the lifecycle state of a repeating task.
//
//	Idle ──Start──► Scheduled ──fire──► Running ──┬──► Scheduled (iterations < bound)
//	                                              └──► Completed (iterations == bound)
//	any non-terminal state ──Cancel / action error──► Cancelled
type State int

const (
	// StateIdle is the state of a task that has not been started.
	StateIdle State = iota

	// StateScheduled means exactly one execution is queued with the scheduler.
	StateScheduled

	// StateRunning means the action is executing. Nothing is queued.
	StateRunning

	// StateCompleted is terminal: the action ran bound times.
	StateCompleted

	// StateCancelled is terminal: the task was cancelled, its context ended,
	// or its action failed.
	StateCancelled
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateScheduled:
		return "Scheduled"
	case StateRunning:
		return "Running"
	case StateCompleted:
		return "Completed"
	case StateCancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further executions can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// MarshalText encodes the state as its name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
