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

// Package context provides the ExecutionContext threaded through every
// repeating task and every action it runs.
//
// ExecutionContext bundles:
//   - a standard Go context for cancellation
//   - the Clock, which is also the task's delayed-execution Scheduler
//   - observability tools (Tracer, Metrics, Logger, ErrorRecorder)
//   - the identity of the current execution (TaskID, Iteration)
//
// Every observability component defaults to a NoOp implementation.
//
// Example usage:
//
//	ctx := context.NewExecutionContextBuilder().
//	    WithClock(clock.NewRealTimeClock()).
//	    WithLogger(context.NewZerologLogger(zerolog.New(os.Stderr))).
//	    Build()
//	ctx.Logger.Info("Starting", map[string]interface{}{"component": "poller"})
package context

import (
	"context"

	"github.com/jazzpetri/rearm/clock"
)

// ExecutionContext carries time, cancellation and observability through a
// repeating task and into its action.
//
// A repeating task derives a per-execution copy via WithExecution, so an
// action can read which task it belongs to and which iteration it is.
// Derivation methods return copies; the receiver is never modified.
type ExecutionContext struct {
	// Context is the standard Go context. A repeating task whose Context is
	// done stops at its next execution step.
	Context context.Context

	// Clock provides time and scheduling. Use VirtualClock in tests.
	Clock clock.Clock

	// TaskID identifies the repeating task running the current action.
	// Empty outside of an execution.
	TaskID string

	// Iteration is the zero-based index of the current execution.
	Iteration int

	// Tracer handles distributed tracing. Defaults to NoOpTracer.
	Tracer Tracer

	// Metrics handles metrics collection. Defaults to NoOpMetrics.
	Metrics MetricsCollector

	// Logger handles structured logging. Defaults to NoOpLogger.
	Logger Logger

	// ErrorRecorder records errors. Defaults to NoOpErrorRecorder.
	ErrorRecorder ErrorRecorder
}

// NewExecutionContext creates a new execution context with NoOp
// observability. A nil ctx is replaced with context.Background().
func NewExecutionContext(ctx context.Context, clk clock.Clock) *ExecutionContext {
	if ctx == nil {
		ctx = context.Background()
	}
	ec := &ExecutionContext{
		Context: ctx,
		Clock:   clk,
	}
	ec.ensureObservability()
	return ec
}

// ensureObservability replaces nil observability components with NoOp
// implementations. It can be called after direct field assignment
// (e.g., ctx.Logger = nil).
func (e *ExecutionContext) ensureObservability() {
	if e.Logger == nil {
		e.Logger = &NoOpLogger{}
	}
	if e.Metrics == nil {
		e.Metrics = &NoOpMetrics{}
	}
	if e.Tracer == nil {
		e.Tracer = &NoOpTracer{}
	}
	if e.ErrorRecorder == nil {
		e.ErrorRecorder = &NoOpErrorRecorder{}
	}
	if e.Context == nil {
		e.Context = context.Background()
	}
}

// Normalize fills any nil component with its default and returns e.
func (e *ExecutionContext) Normalize() *ExecutionContext {
	e.ensureObservability()
	return e
}

// WithTracer returns a new context with the specified tracer.
func (e *ExecutionContext) WithTracer(tracer Tracer) *ExecutionContext {
	newCtx := *e
	newCtx.Tracer = tracer
	newCtx.ensureObservability()
	return &newCtx
}

// WithMetrics returns a new context with the specified metrics collector.
func (e *ExecutionContext) WithMetrics(metrics MetricsCollector) *ExecutionContext {
	newCtx := *e
	newCtx.Metrics = metrics
	newCtx.ensureObservability()
	return &newCtx
}

// WithLogger returns a new context with the specified logger.
func (e *ExecutionContext) WithLogger(logger Logger) *ExecutionContext {
	newCtx := *e
	newCtx.Logger = logger
	newCtx.ensureObservability()
	return &newCtx
}

// WithErrorRecorder returns a new context with the specified error recorder.
func (e *ExecutionContext) WithErrorRecorder(recorder ErrorRecorder) *ExecutionContext {
	newCtx := *e
	newCtx.ErrorRecorder = recorder
	newCtx.ensureObservability()
	return &newCtx
}

// WithContext returns a new context with the specified Go context.
func (e *ExecutionContext) WithContext(ctx context.Context) *ExecutionContext {
	newCtx := *e
	newCtx.Context = ctx
	newCtx.ensureObservability()
	return &newCtx
}

// WithExecution returns a copy identifying one execution of a repeating task.
func (e *ExecutionContext) WithExecution(taskID string, iteration int) *ExecutionContext {
	newCtx := *e
	newCtx.TaskID = taskID
	newCtx.Iteration = iteration
	return &newCtx
}

// Clone returns a builder pre-filled with this context's components.
func (e *ExecutionContext) Clone() *ExecutionContextBuilder {
	return &ExecutionContextBuilder{
		ctx:           e.Context,
		clock:         e.Clock,
		logger:        e.Logger,
		metrics:       e.Metrics,
		tracer:        e.Tracer,
		errorRecorder: e.ErrorRecorder,
	}
}
