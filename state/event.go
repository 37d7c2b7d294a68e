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

// Package state records the lifecycle of repeating tasks in an append-only
// event log.
//
// Every transition a repeating task goes through (started, one execution
// finished, completed, cancelled, failed) can be appended as an Event. The log
// is meant for auditing and debugging; tasks never read it back.
package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/jazzpetri/rearm/clock"
)

// EventType identifies the kind of lifecycle event.
type EventType string

const (
	// EventTaskStarted is recorded when Start moves a task from Idle to Scheduled.
	EventTaskStarted EventType = "task.started"

	// EventTaskExecuted is recorded after each successful execution.
	EventTaskExecuted EventType = "task.executed"

	// EventTaskCompleted is recorded when a task reaches its bound.
	EventTaskCompleted EventType = "task.completed"

	// EventTaskCancelled is recorded when a task is cancelled.
	EventTaskCancelled EventType = "task.cancelled"

	// EventTaskFailed is recorded when an action fails and the task is cancelled.
	EventTaskFailed EventType = "task.failed"
)

// Event is an immutable record of one lifecycle step.
type Event struct {
	// ID is a unique identifier for this event
	ID string `json:"id"`

	// Type identifies the category of event
	Type EventType `json:"type"`

	// Timestamp is taken from the task's clock
	Timestamp time.Time `json:"timestamp"`

	// TaskID identifies the repeating task
	TaskID string `json:"task_id"`

	// TaskName is the task's configured name
	TaskName string `json:"task_name,omitempty"`

	// Iterations is the task's iteration count after the step
	Iterations int `json:"iterations"`

	// Error holds the failure message for failed events
	Error string `json:"error,omitempty"`

	// Metadata carries additional step-specific information
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent creates an event with a random UUID and a timestamp from clk.
func NewEvent(eventType EventType, taskID string, clk clock.Clock) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: clk.Now(),
		TaskID:    taskID,
		Metadata:  make(map[string]interface{}),
	}
}

// SetMetadata sets or merges metadata fields.
func (e *Event) SetMetadata(m map[string]interface{}) {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	for k, v := range m {
		e.Metadata[k] = v
	}
}
