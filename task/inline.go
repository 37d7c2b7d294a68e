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
	stdContext "context"
	"errors"
	"fmt"
	"time"

	"github.com/jazzpetri/rearm/context"
)

// InlineTask executes a Go function in-process with observability.
//
// Example:
//
//	task := &InlineTask{
//	    Name: "render-counter",
//	    Fn: func(ctx *context.ExecutionContext) error {
//	        fmt.Println(ctx.Iteration)
//	        return nil
//	    },
//	}
//
// Error Handling:
// If Fn panics, the panic is recovered and returned as an error.
//
// Timeout:
// If Timeout is positive, ctx.Context handed to Fn carries that deadline and
// an error returned after it passes is reported as context.DeadlineExceeded.
type InlineTask struct {
	// Name is used in logs, traces, and metrics.
	Name string

	// Fn is the function to execute.
	Fn func(ctx *context.ExecutionContext) error

	// Timeout is the maximum duration for Fn. Zero means unlimited.
	Timeout time.Duration
}

// Execute runs Fn once.
//
// Returns an error if:
//   - Name or Fn is not set
//   - Fn returns an error
//   - Fn panics
//   - Fn exceeds Timeout
func (t *InlineTask) Execute(ctx *context.ExecutionContext) error {
	if t.Name == "" {
		return fmt.Errorf("inline task: name is required")
	}
	if t.Fn == nil {
		return fmt.Errorf("inline task: function is required")
	}

	if t.Timeout > 0 {
		timeoutCtx, cancel := stdContext.WithTimeout(ctx.Context, t.Timeout)
		defer cancel()
		ctx = ctx.WithContext(timeoutCtx)
	}

	span := ctx.Tracer.StartSpan("task.inline." + t.Name)
	defer span.End()
	span.SetAttribute("iteration", ctx.Iteration)

	ctx.Metrics.Inc("task_inline_executions_total")

	fields := map[string]interface{}{
		"task_type": "inline",
		"task_name": t.Name,
		"task_id":   ctx.TaskID,
		"iteration": ctx.Iteration,
	}
	ctx.Logger.Debug("Executing inline task", fields)

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("inline task %s panicked: %v", t.Name, r)
				ctx.ErrorRecorder.RecordError(err, map[string]interface{}{
					"task_name": t.Name,
					"task_id":   ctx.TaskID,
					"panic":     true,
				})
			}
		}()
		err = t.Fn(ctx)
	}()

	if err == nil {
		ctx.Metrics.Inc("task_inline_success_total")
		ctx.Logger.Debug("Inline task completed", fields)
		return nil
	}

	span.RecordError(err)
	if t.Timeout > 0 && (errors.Is(err, stdContext.DeadlineExceeded) ||
		ctx.Context.Err() == stdContext.DeadlineExceeded) {
		ctx.Metrics.Inc("task_timeout_total")
		ctx.Logger.Error("Inline task timeout", map[string]interface{}{
			"task_name": t.Name,
			"task_id":   ctx.TaskID,
			"timeout":   t.Timeout.String(),
		})
		return fmt.Errorf("task timeout after %v: %w", t.Timeout, stdContext.DeadlineExceeded)
	}

	ctx.Metrics.Inc("task_inline_errors_total")
	ctx.Logger.Error("Inline task failed", map[string]interface{}{
		"task_name": t.Name,
		"task_id":   ctx.TaskID,
		"iteration": ctx.Iteration,
		"error":     err,
	})
	return err
}
