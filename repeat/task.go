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

// Package repeat implements bounded, self-rescheduling tasks.
//
// A Task runs an action at most bound times. It never uses a fixed-rate
// timer: after each execution returns, the task hands the next execution to
// the scheduler (re-arming), so two executions of the same task never
// overlap and consecutive executions are always separated by at least one
// scheduling delay, however long the action takes.
//
// Lifecycle:
//
//	t, _ := repeat.New(ctx, 3, action, repeat.Config{Interval: time.Second})
//	_ = t.Start()  // Idle -> Scheduled, first execution queued
//	...            // Scheduled -> Running -> Scheduled ... -> Completed
//	t.Cancel()     // any non-terminal state -> Cancelled
//
// If the action returns an error or panics, the task is cancelled; the
// failure is reported through Config.OnFailure, Config.Events, Err and Wait.
// There is no automatic retry; wrap the action in task.RetryTask for that.
//
// The scheduler is the Clock of the ExecutionContext. With clock.VirtualClock
// every execution happens on the goroutine that drains the clock, which gives
// the single-threaded cooperative model. With clock.RealTimeClock executions
// run on timer goroutines; a single mutex per task serializes Start, Cancel
// and the execution step.
//
// Observers (logger, metrics, error recorder, event log, event system and
// hooks) are never called with the task's mutex held, so they may call back
// into the task. A task delivers its notifications one at a time, in the
// order the transitions happened.
package repeat

import (
	stdcontext "context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jazzpetri/rearm/clock"
	"github.com/jazzpetri/rearm/context"
	"github.com/jazzpetri/rearm/event"
	"github.com/jazzpetri/rearm/state"
	"github.com/jazzpetri/rearm/task"
)

// Task is a bounded repeating task. Create it with New.
type Task struct {
	id     string
	name   string
	bound  int
	action task.Task
	cfg    Config
	ctx    *context.ExecutionContext
	sched  clock.Scheduler

	mu         sync.Mutex
	state      State
	iterations int
	pending    clock.Handle
	stopper    clock.Handle
	err        error
	done       chan struct{}

	// outbox holds notifications queued under mu; draining marks the
	// goroutine currently delivering them.
	outbox   []func()
	draining bool
}

// Snapshot is a point-in-time copy of a task's observable state.
type Snapshot struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	State      State  `json:"state"`
	Iterations int    `json:"iterations"`
	Bound      int    `json:"bound"`
	Error      string `json:"error,omitempty"`
}

// New creates an Idle task that will run action at most bound times.
// bound == 0 yields a task that completes without invoking action.
//
// ctx supplies the scheduler (ctx.Clock), cancellation (ctx.Context) and
// observability; nil components are replaced with defaults.
func New(ctx *context.ExecutionContext, bound int, action task.Task, cfg Config) (*Task, error) {
	if ctx == nil {
		return nil, fmt.Errorf("repeat: execution context is required")
	}
	if ctx.Clock == nil {
		return nil, fmt.Errorf("repeat: execution context has no clock")
	}
	if action == nil {
		return nil, fmt.Errorf("repeat: action is required")
	}
	if bound < 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrNegativeBound, bound)
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("repeat: interval must not be negative (got %v)", cfg.Interval)
	}
	if cfg.StopAfter < 0 {
		return nil, fmt.Errorf("repeat: stop-after must not be negative (got %v)", cfg.StopAfter)
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}

	ec := *ctx
	ec.Normalize()

	return &Task{
		id:     uuid.NewString(),
		name:   cfg.Name,
		bound:  bound,
		action: action,
		cfg:    cfg,
		ctx:    &ec,
		sched:  ec.Clock,
		state:  StateIdle,
		done:   make(chan struct{}),
	}, nil
}

// ID returns the task's unique identifier.
func (t *Task) ID() string { return t.id }

// Name returns the configured name.
func (t *Task) Name() string { return t.name }

// Bound returns the exclusive upper limit on Iterations.
func (t *Task) Bound() int { return t.bound }

// State returns the current lifecycle state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Iterations returns the number of successful executions so far.
func (t *Task) Iterations() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.iterations
}

// Err returns the reason a cancelled task stopped: an *ActionError, or the
// ExecutionContext's context error. It is nil while the task is live, after
// completion, and after an explicit Cancel.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Done returns a channel closed once the task is terminal and its outcome
// has been delivered to observers.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until Done is closed and returns Err, or until ctx ends.
// With a VirtualClock someone else must drain the clock for Wait to return.
func (t *Task) Wait(ctx stdcontext.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a copy of the task's observable state.
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

func (t *Task) snapshot() Snapshot {
	s := Snapshot{
		ID:         t.id,
		Name:       t.name,
		State:      t.state,
		Iterations: t.iterations,
		Bound:      t.bound,
	}
	if t.err != nil {
		s.Error = t.err.Error()
	}
	return s
}

// Start moves an Idle task to Scheduled and queues the first execution.
// The action never runs inside Start.
//
// Calling Start on a task that is not Idle returns an *InvalidStateError and
// changes nothing.
func (t *Task) Start() error {
	t.mu.Lock()
	if t.state != StateIdle {
		err := &InvalidStateError{Op: "start", State: t.state}
		t.mu.Unlock()
		return err
	}

	t.state = StateScheduled
	t.pending = t.sched.Schedule(t.cfg.Interval, t.step)
	if t.cfg.StopAfter > 0 {
		t.stopper = t.sched.Schedule(t.cfg.StopAfter, t.expire)
	}

	t.inc("repeat_tasks_started_total")
	t.log(t.ctx.Logger.Info, "Task started", map[string]interface{}{
		"interval":   t.cfg.Interval.String(),
		"stop_after": t.cfg.StopAfter.String(),
	})
	t.record(state.EventTaskStarted, nil, nil)
	t.mu.Unlock()

	t.flush()
	return nil
}

// Cancel stops the task. A queued execution is revoked; a running one
// finishes but is not followed by another. Cancelling a Completed or
// Cancelled task is a no-op. Cancelling an Idle task discards it.
func (t *Task) Cancel() {
	t.cancel("cancelled")
}

func (t *Task) expire() {
	t.cancel("stop_after")
}

func (t *Task) cancel(reason string) {
	t.mu.Lock()
	if t.state.Terminal() {
		t.mu.Unlock()
		return
	}

	prev := t.state
	t.finish(StateCancelled, nil)
	t.inc("repeat_cancelled_total")
	t.log(t.ctx.Logger.Info, "Task cancelled", map[string]interface{}{
		"reason":     reason,
		"from_state": prev.String(),
	})
	t.announce(state.EventTaskCancelled, nil, map[string]interface{}{"reason": reason})
	t.emit(t.closeDone)
	t.mu.Unlock()

	t.flush()
}

// step is the callback handed to the scheduler: one execution of the action.
func (t *Task) step() {
	defer t.flush()

	t.mu.Lock()

	// A cancel that raced with an already-fired callback wins.
	if t.state != StateScheduled {
		t.mu.Unlock()
		return
	}
	t.pending = nil

	if err := t.ctx.Context.Err(); err != nil {
		t.finish(StateCancelled, err)
		t.inc("repeat_cancelled_total")
		t.log(t.ctx.Logger.Warn, "Task context ended", map[string]interface{}{"error": err.Error()})
		t.announce(state.EventTaskCancelled, err, map[string]interface{}{"reason": "context"})
		t.emit(t.closeDone)
		t.mu.Unlock()
		return
	}

	if t.iterations >= t.bound {
		t.complete()
		t.mu.Unlock()
		return
	}

	t.state = StateRunning
	iteration := t.iterations
	t.mu.Unlock()

	err := t.run(iteration)

	t.mu.Lock()
	defer t.mu.Unlock()

	if err != nil {
		t.fail(iteration, err)
		return
	}

	t.iterations++
	t.inc("repeat_executions_total")
	t.record(state.EventTaskExecuted, nil, nil)

	switch {
	case t.state != StateRunning:
		// Cancelled while the action ran.
	case t.iterations < t.bound:
		t.state = StateScheduled
		t.pending = t.sched.Schedule(t.cfg.Interval, t.step)
		t.log(t.ctx.Logger.Debug, "Execution re-armed", nil)
	default:
		t.complete()
	}
}

// run invokes the action once, outside the task mutex, converting panics
// into errors.
func (t *Task) run(iteration int) (err error) {
	ec := t.ctx.WithExecution(t.id, iteration)
	ec.Context = context.ContextWithExecutionContext(ec.Context, ec)

	span := ec.Tracer.StartSpan("repeat.execute." + t.name)
	defer span.End()
	span.SetAttribute("task_id", t.id)
	span.SetAttribute("iteration", iteration)
	span.SetAttribute("bound", t.bound)

	started := ec.Clock.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panicked: %v", r)
		}
		if err != nil {
			span.RecordError(err)
		}
		ec.Metrics.Observe("repeat_execution_duration_seconds", ec.Clock.Now().Sub(started).Seconds())
	}()

	return t.action.Execute(ec)
}

// fail handles an action error. The task is cancelled unless a Cancel got
// there first, in which case only the error is kept. Must be called with mu held.
func (t *Task) fail(iteration int, cause error) {
	actionErr := &ActionError{TaskID: t.id, Name: t.name, Iteration: iteration, Err: cause}

	running := t.state == StateRunning
	if running {
		t.finish(StateCancelled, actionErr)
	} else if t.err == nil {
		t.err = actionErr
	}

	t.inc("repeat_failures_total")
	recorder := t.ctx.ErrorRecorder
	meta := map[string]interface{}{
		"task_id":   t.id,
		"task_name": t.name,
		"iteration": iteration,
	}
	t.emit(func() { recorder.RecordError(actionErr, meta) })
	t.log(t.ctx.Logger.Error, "Action failed, task cancelled", map[string]interface{}{"error": cause})
	t.announce(state.EventTaskFailed, actionErr, map[string]interface{}{"iteration": iteration})

	if onFailure := t.cfg.OnFailure; onFailure != nil {
		t.emit(func() { onFailure(actionErr) })
	}
	if running {
		t.emit(t.closeDone)
	}
}

// complete moves the task to Completed. Must be called with mu held.
func (t *Task) complete() {
	t.finish(StateCompleted, nil)
	t.inc("repeat_completed_total")
	t.log(t.ctx.Logger.Info, "Task completed", nil)
	t.announce(state.EventTaskCompleted, nil, nil)
	if onComplete := t.cfg.OnComplete; onComplete != nil {
		t.emit(func() { onComplete(t) })
	}
	t.emit(t.closeDone)
}

// finish enters a terminal state and releases scheduler handles. The caller
// queues closeDone after the outcome notifications. Must be called with mu held.
func (t *Task) finish(s State, err error) {
	if t.pending != nil {
		t.sched.Revoke(t.pending)
		t.pending = nil
	}
	if t.stopper != nil {
		t.sched.Revoke(t.stopper)
		t.stopper = nil
	}
	t.state = s
	t.err = err
}

func (t *Task) closeDone() {
	close(t.done)
}

// emit queues fn for delivery once mu is released. Must be called with mu held.
func (t *Task) emit(fn func()) {
	t.outbox = append(t.outbox, fn)
}

// flush delivers queued notifications in order. Only one goroutine delivers
// at a time; a notification that re-enters the task only queues more work,
// which the delivering goroutine picks up. Must be called without mu held.
func (t *Task) flush() {
	t.mu.Lock()
	if t.draining {
		t.mu.Unlock()
		return
	}
	t.draining = true

	clean := false
	defer func() {
		if !clean {
			t.mu.Lock()
			t.draining = false
			t.mu.Unlock()
		}
	}()

	for len(t.outbox) > 0 {
		batch := t.outbox
		t.outbox = nil
		t.mu.Unlock()

		for _, fn := range batch {
			fn()
		}

		t.mu.Lock()
	}
	t.draining = false
	clean = true
	t.mu.Unlock()
}

// inc queues a counter increment. Must be called with mu held.
func (t *Task) inc(name string) {
	metrics := t.ctx.Metrics
	t.emit(func() { metrics.Inc(name) })
}

// log queues a log line carrying the task's current fields merged with extra.
// Must be called with mu held.
func (t *Task) log(logFn func(string, map[string]interface{}), msg string, extra map[string]interface{}) {
	fields := t.fields(extra)
	t.emit(func() { logFn(msg, fields) })
}

// fields returns the common log fields merged with extra. Must be called with mu held.
func (t *Task) fields(extra map[string]interface{}) map[string]interface{} {
	f := map[string]interface{}{
		"task_id":    t.id,
		"task_name":  t.name,
		"iterations": t.iterations,
		"bound":      t.bound,
		"state":      t.state.String(),
	}
	for k, v := range extra {
		f[k] = v
	}
	return f
}

// record queues a lifecycle event for the event log, if one is configured.
// Must be called with mu held.
func (t *Task) record(eventType state.EventType, err error, meta map[string]interface{}) {
	if t.cfg.EventLog == nil {
		return
	}

	e := state.NewEvent(eventType, t.id, t.ctx.Clock)
	e.TaskName = t.name
	e.Iterations = t.iterations
	if err != nil {
		e.Error = err.Error()
	}
	e.SetMetadata(meta)

	eventLog := t.cfg.EventLog
	logger := t.ctx.Logger
	fields := t.fields(map[string]interface{}{"event_type": string(eventType)})
	t.emit(func() {
		if appendErr := eventLog.Append(e); appendErr != nil {
			fields["error"] = appendErr.Error()
			logger.Warn("Failed to record task event", fields)
		}
	})
}

// announce records an outcome event and publishes it to the event system.
// Must be called with mu held.
func (t *Task) announce(eventType state.EventType, err error, meta map[string]interface{}) {
	t.record(eventType, err, meta)

	if t.cfg.Events == nil {
		return
	}

	e := event.Event{
		ID:        uuid.NewString(),
		Type:      string(eventType),
		Source:    t.name,
		TaskID:    t.id,
		Timestamp: t.ctx.Clock.Now(),
		Err:       err,
		Data:      t.snapshot(),
		Metadata:  meta,
	}

	bus := t.cfg.Events
	logger := t.ctx.Logger
	fields := t.fields(map[string]interface{}{"event_type": e.Type})
	t.emit(func() {
		if pubErr := bus.PublishSync(stdcontext.Background(), e); pubErr != nil {
			fields["error"] = pubErr.Error()
			logger.Warn("Failed to publish task event", fields)
		}
	})
}
