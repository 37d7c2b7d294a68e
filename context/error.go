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

package context

// ErrorRecorder records errors for observability and debugging.
// Implementations should be thread-safe for concurrent use.
//
// Recording is separate from propagation: a repeating task records an action
// failure here and still returns it to whoever observes the task's outcome.
type ErrorRecorder interface {
	// RecordError records an error with optional metadata.
	//
	// Metadata used by this module:
	//   - "task_id": repeating task identifier
	//   - "task_name": configured task name
	//   - "iteration": zero-based execution index that failed
	//   - "panic": true when the action panicked
	//
	// Example:
	//   recorder.RecordError(err, map[string]interface{}{
	//       "task_id":   "6f1c...",
	//       "iteration": 2,
	//   })
	RecordError(err error, metadata map[string]interface{})

	// RecordRetry records a retry attempt (1-based) and the backoff before it.
	RecordRetry(attempt int, nextRetry interface{})

	// RecordCompensation records a compensation action being executed.
	RecordCompensation(action string)
}
