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

// Package event provides a publish/subscribe bus for task outcomes.
//
// A repeating task configured with an EventSystem publishes one event when it
// reaches a terminal state: "task.completed", "task.failed" or
// "task.cancelled". Any number of observers can subscribe to a type, or to
// "*" for all of them.
//
//	bus := event.NewInMemoryEventSystem(nil)
//	defer bus.Close()
//
//	bus.Subscribe("task.failed", func(e event.Event) error {
//	    alert(e.Source, e.Err)
//	    return nil
//	})
package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	execCtx "github.com/jazzpetri/rearm/context"
	"github.com/jazzpetri/rearm/task"
)

// Wildcard subscribes to every event type.
const Wildcard = "*"

// DefaultBufferSize is the capacity of the asynchronous delivery queue.
const DefaultBufferSize = 100

var (
	// ErrClosed is returned when publishing to a closed event system.
	ErrClosed = errors.New("event: system is closed")

	// ErrBufferFull is returned by Publish when the delivery queue is full.
	ErrBufferFull = errors.New("event: delivery queue full, event dropped")

	// ErrSubscriptionNotFound is returned by Unsubscribe for unknown IDs.
	ErrSubscriptionNotFound = errors.New("event: subscription not found")
)

// Event is a single notification about a task.
type Event struct {
	// ID is a unique identifier, filled in on publish when empty.
	ID string

	// Type is the event type, e.g. "task.failed".
	Type string

	// Source is the name of the publishing task.
	Source string

	// TaskID identifies the publishing task.
	TaskID string

	// Timestamp is filled in on publish when zero.
	Timestamp time.Time

	// Err is the task's outcome error: the *repeat.ActionError for
	// "task.failed", the context error for a context cancellation, nil otherwise.
	Err error

	// Data carries the publisher's payload. Repeating tasks send a repeat.Snapshot.
	Data interface{}

	// Metadata carries additional information.
	Metadata map[string]interface{}
}

// EventHandler processes an event.
type EventHandler func(e Event) error

// EventSystem manages subscriptions and publishing.
type EventSystem interface {
	// Subscribe registers handler for eventType, or for every type with
	// Wildcard. Returns a subscription ID.
	Subscribe(eventType string, handler EventHandler) (string, error)

	// Unsubscribe removes a subscription by ID.
	Unsubscribe(subscriptionID string) error

	// Publish queues e for asynchronous delivery.
	Publish(e Event) error

	// PublishSync delivers e to every matching handler in subscription order
	// and returns their errors combined.
	PublishSync(ctx context.Context, e Event) error

	// Close stops the system after delivering queued events.
	Close() error
}

type subscription struct {
	id        string
	eventType string
	handler   EventHandler
}

// InMemoryEventSystem is an EventSystem for a single process.
type InMemoryEventSystem struct {
	mu      sync.RWMutex
	subs    []*subscription
	running bool

	queue  chan Event
	done   chan struct{}
	wg     sync.WaitGroup
	logger execCtx.Logger
}

// NewInMemoryEventSystem creates an event system and starts its delivery
// goroutine. Failures of asynchronously delivered handlers are logged to
// logger; nil discards them.
func NewInMemoryEventSystem(logger execCtx.Logger) *InMemoryEventSystem {
	if logger == nil {
		logger = &execCtx.NoOpLogger{}
	}
	es := &InMemoryEventSystem{
		running: true,
		queue:   make(chan Event, DefaultBufferSize),
		done:    make(chan struct{}),
		logger:  logger,
	}

	es.wg.Add(1)
	go es.processEvents()

	return es
}

// Subscribe registers handler for eventType.
func (es *InMemoryEventSystem) Subscribe(eventType string, handler EventHandler) (string, error) {
	if handler == nil {
		return "", fmt.Errorf("event: handler cannot be nil")
	}
	if eventType == "" {
		return "", fmt.Errorf("event: event type cannot be empty")
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	sub := &subscription{
		id:        uuid.NewString(),
		eventType: eventType,
		handler:   handler,
	}
	es.subs = append(es.subs, sub)
	return sub.id, nil
}

// Unsubscribe removes a subscription by ID.
func (es *InMemoryEventSystem) Unsubscribe(subscriptionID string) error {
	es.mu.Lock()
	defer es.mu.Unlock()

	for i, sub := range es.subs {
		if sub.id == subscriptionID {
			es.subs = append(es.subs[:i], es.subs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrSubscriptionNotFound, subscriptionID)
}

// Publish queues e for delivery on the event system's goroutine.
// It never blocks; a full queue drops the event and returns ErrBufferFull.
func (es *InMemoryEventSystem) Publish(e Event) error {
	es.mu.RLock()
	defer es.mu.RUnlock()

	if !es.running {
		return ErrClosed
	}

	select {
	case es.queue <- stamp(e):
		return nil
	default:
		return ErrBufferFull
	}
}

// PublishSync delivers e on the calling goroutine. Every matching handler
// runs even if an earlier one fails; panics are reported as errors.
// Delivery stops early only if ctx ends.
func (es *InMemoryEventSystem) PublishSync(ctx context.Context, e Event) error {
	es.mu.RLock()
	running := es.running
	subs := es.matching(e.Type)
	es.mu.RUnlock()

	if !running {
		return ErrClosed
	}

	e = stamp(e)
	errs := &task.MultiError{}
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			errs.Add(err)
			break
		}
		if err := invoke(sub, e); err != nil {
			errs.Add(err)
		}
	}
	return errs.ErrorOrNil()
}

// Close stops accepting events, delivers what is queued and waits for the
// delivery goroutine to exit.
func (es *InMemoryEventSystem) Close() error {
	es.mu.Lock()
	if !es.running {
		es.mu.Unlock()
		return ErrClosed
	}
	es.running = false
	es.mu.Unlock()

	close(es.done)
	es.wg.Wait()
	return nil
}

// SubscriptionCount returns the number of active subscriptions.
func (es *InMemoryEventSystem) SubscriptionCount() int {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return len(es.subs)
}

func (es *InMemoryEventSystem) processEvents() {
	defer es.wg.Done()

	for {
		select {
		case e := <-es.queue:
			es.deliver(e)
		case <-es.done:
			for {
				select {
				case e := <-es.queue:
					es.deliver(e)
				default:
					return
				}
			}
		}
	}
}

func (es *InMemoryEventSystem) deliver(e Event) {
	es.mu.RLock()
	subs := es.matching(e.Type)
	es.mu.RUnlock()

	for _, sub := range subs {
		if err := invoke(sub, e); err != nil {
			es.logger.Warn("Event handler failed", map[string]interface{}{
				"event_id":   e.ID,
				"event_type": e.Type,
				"task_id":    e.TaskID,
				"error":      err.Error(),
			})
		}
	}
}

// matching returns the subscriptions for eventType in subscription order.
// Must be called with mu held.
func (es *InMemoryEventSystem) matching(eventType string) []*subscription {
	var out []*subscription
	for _, sub := range es.subs {
		if sub.eventType == Wildcard || sub.eventType == eventType {
			out = append(out, sub)
		}
	}
	return out
}

func invoke(sub *subscription, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %s panicked: %v", sub.id, r)
		}
	}()
	if herr := sub.handler(e); herr != nil {
		return fmt.Errorf("handler %s: %w", sub.id, herr)
	}
	return nil
}

func stamp(e Event) Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return e
}
