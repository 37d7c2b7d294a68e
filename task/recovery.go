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

package task

import (
	stdcontext "context"
	"errors"
	"fmt"

	"github.com/jazzpetri/rearm/context"
)

// RecoveryTask runs a fallback when its primary task fails, so one bad
// iteration of a repeating task can be absorbed instead of cancelling it.
//
// A failure is compensated when When is nil or returns true for it; any
// other failure is returned unchanged. The compensation sees the primary
// error through PrimaryError. If the compensation succeeds, the iteration
// counts as successful. If it fails, Execute returns a *CompensationError
// carrying both errors.
//
// Example:
//
//	poll := &RecoveryTask{
//	    Name: "poll-status",
//	    Task: &HTTPTask{Name: "status", Method: http.MethodGet, URL: statusURL},
//	    When: func(err error) bool { return !errors.Is(err, stdcontext.Canceled) },
//	    Fallback: Func(func(ctx *context.ExecutionContext) error {
//	        cause, _ := PrimaryError(ctx)
//	        return cache.MarkStale(cause)
//	    }),
//	}
type RecoveryTask struct {
	// Name labels spans, metrics and logs.
	Name string

	// Task is the primary task.
	Task Task

	// Fallback runs in place of a failed Task.
	Fallback Task

	// When selects the failures Fallback handles. Nil handles all of them.
	When func(err error) bool
}

// CompensationError reports a failed primary task whose fallback also failed.
// errors.Is and errors.As match either error.
type CompensationError struct {
	Name     string
	Primary  error
	Fallback error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("recovery %s: fallback failed: %v (after: %v)", e.Name, e.Fallback, e.Primary)
}

// Unwrap returns the fallback error first, then the primary one.
func (e *CompensationError) Unwrap() []error {
	return []error{e.Fallback, e.Primary}
}

type primaryErrorKey struct{}

// PrimaryError returns the failure a RecoveryTask is compensating for.
// ok is false outside of a fallback.
func PrimaryError(ctx *context.ExecutionContext) (err error, ok bool) {
	if ctx == nil || ctx.Context == nil {
		return nil, false
	}
	err, ok = ctx.Context.Value(primaryErrorKey{}).(error)
	return err, ok
}

// Execute runs Task and, on a handled failure, Fallback.
func (r *RecoveryTask) Execute(ctx *context.ExecutionContext) error {
	if r.Name == "" {
		return errors.New("recovery task: name is required")
	}
	if r.Task == nil {
		return errors.New("recovery task: task is required")
	}
	if r.Fallback == nil {
		return errors.New("recovery task: fallback is required")
	}

	err := r.Task.Execute(ctx)
	if err == nil {
		return nil
	}
	if r.When != nil && !r.When(err) {
		ctx.Metrics.Inc("recovery_skipped_total")
		return err
	}

	span := ctx.Tracer.StartSpan("task.recovery." + r.Name)
	defer span.End()
	span.RecordError(err)

	ctx.ErrorRecorder.RecordCompensation(r.Name)
	fields := map[string]interface{}{
		"task_name":     r.Name,
		"task_id":       ctx.TaskID,
		"iteration":     ctx.Iteration,
		"primary_error": err.Error(),
	}

	base := ctx.Context
	if base == nil {
		base = stdcontext.Background()
	}
	fbErr := r.Fallback.Execute(ctx.WithContext(stdcontext.WithValue(base, primaryErrorKey{}, err)))
	if fbErr == nil {
		ctx.Metrics.Inc("recovery_compensated_total")
		ctx.Logger.Warn("Failure compensated", fields)
		return nil
	}

	span.SetAttribute("fallback_failed", true)
	ctx.Metrics.Inc("recovery_failed_total")
	fields["fallback_error"] = fbErr.Error()
	ctx.Logger.Error("Fallback failed", fields)

	return &CompensationError{Name: r.Name, Primary: err, Fallback: fbErr}
}
