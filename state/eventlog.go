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

package state

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// EventLog is the interface for event storage and retrieval.
// Implementations must be safe for concurrent access by multiple goroutines.
type EventLog interface {
	// Append adds a new event to the log.
	// Returns an error if the event is nil, has no ID, or has a duplicate ID.
	Append(event *Event) error

	// Get retrieves an event by its unique ID.
	Get(eventID string) (*Event, error)

	// GetAll retrieves all events in the order they were appended.
	GetAll() ([]*Event, error)

	// GetSince retrieves events with a timestamp strictly after the cutoff.
	GetSince(timestamp time.Time) ([]*Event, error)

	// GetByType retrieves all events of a specific type, in append order.
	GetByType(eventType EventType) ([]*Event, error)

	// GetByTask retrieves all events of one repeating task, in append order.
	GetByTask(taskID string) ([]*Event, error)

	// Count returns the total number of events in the log.
	Count() int

	// Clear removes all events from the log.
	Clear() error
}

// MemoryEventLog is an in-memory implementation of EventLog.
//
// When MaxEvents is > 0 the oldest events are dropped (FIFO) once the limit
// is reached. When MaxEvents is 0, the log grows unbounded.
//
// All operations are thread-safe using a RWMutex.
type MemoryEventLog struct {
	mu        sync.RWMutex
	events    []*Event
	index     map[string]*Event
	MaxEvents int
}

// NewMemoryEventLog creates an empty log. An optional argument sets MaxEvents.
func NewMemoryEventLog(maxEvents ...int) *MemoryEventLog {
	max := 0
	if len(maxEvents) > 0 {
		max = maxEvents[0]
	}
	return &MemoryEventLog{
		events:    make([]*Event, 0),
		index:     make(map[string]*Event),
		MaxEvents: max,
	}
}

// Append adds a new event to the log, evicting the oldest one when full.
func (m *MemoryEventLog) Append(e *Event) error {
	if e == nil {
		return fmt.Errorf("cannot append nil event")
	}
	if e.ID == "" {
		return fmt.Errorf("event must have an ID")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.index[e.ID]; exists {
		return fmt.Errorf("event %s already exists", e.ID)
	}

	if m.MaxEvents > 0 && len(m.events) >= m.MaxEvents {
		oldest := m.events[0]
		delete(m.index, oldest.ID)
		m.events = m.events[1:]
	}

	m.events = append(m.events, e)
	m.index[e.ID] = e
	return nil
}

// Get retrieves an event by its unique ID.
func (m *MemoryEventLog) Get(eventID string) (*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	event, exists := m.index[eventID]
	if !exists {
		return nil, fmt.Errorf("event %s not found", eventID)
	}
	return event, nil
}

// GetAll returns a copy of all events in append order.
func (m *MemoryEventLog) GetAll() ([]*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Event, len(m.events))
	copy(result, m.events)
	return result, nil
}

// GetSince retrieves events strictly after timestamp.
func (m *MemoryEventLog) GetSince(timestamp time.Time) ([]*Event, error) {
	return m.filter(func(e *Event) bool { return e.Timestamp.After(timestamp) }), nil
}

// GetByType retrieves all events of a specific type.
func (m *MemoryEventLog) GetByType(eventType EventType) ([]*Event, error) {
	return m.filter(func(e *Event) bool { return e.Type == eventType }), nil
}

// GetByTask retrieves all events of one repeating task.
func (m *MemoryEventLog) GetByTask(taskID string) ([]*Event, error) {
	return m.filter(func(e *Event) bool { return e.TaskID == taskID }), nil
}

func (m *MemoryEventLog) filter(keep func(*Event) bool) []*Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Event, 0)
	for _, event := range m.events {
		if keep(event) {
			result = append(result, event)
		}
	}
	return result
}

// Count returns the total number of events in the log.
func (m *MemoryEventLog) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// Clear removes all events from the log.
func (m *MemoryEventLog) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = make([]*Event, 0)
	m.index = make(map[string]*Event)
	return nil
}

// MarshalJSON encodes the log as a JSON array of events in append order.
func (m *MemoryEventLog) MarshalJSON() ([]byte, error) {
	events, _ := m.GetAll()
	return json.Marshal(events)
}
