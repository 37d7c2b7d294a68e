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
	"fmt"
	"time"

	"github.com/jazzpetri/rearm/context"
)

// SequentialTask runs a list of tasks in order as one action, so a repeating
// task can perform a multi-step job per iteration.
//
// By default execution stops at the first error. With ContinueOnError every
// step runs and failures are collected into a MultiError.
//
// Example:
//
//	seq := &SequentialTask{
//	    Name: "sync",
//	    Tasks: []Task{
//	        &InlineTask{Name: "pull", Fn: pull},
//	        &InlineTask{Name: "push", Fn: push},
//	    },
//	}
type SequentialTask struct {
	// Name is used in logs, traces, and metrics.
	Name string

	// Tasks are executed in order.
	Tasks []Task

	// ContinueOnError runs the remaining steps after a failure.
	ContinueOnError bool

	// Timeout bounds the whole sequence. Zero means no timeout.
	Timeout time.Duration
}

// Execute runs all steps in order. The context is checked before each step.
func (s *SequentialTask) Execute(ctx *context.ExecutionContext) error {
	if s.Name == "" {
		return fmt.Errorf("sequential task: name is required")
	}
	if len(s.Tasks) == 0 {
		return fmt.Errorf("sequential task: tasks list cannot be empty")
	}

	if s.Timeout > 0 {
		timeoutCtx, cancel := stdContext.WithTimeout(ctx.Context, s.Timeout)
		defer cancel()
		ctx = ctx.WithContext(timeoutCtx)
	}

	span := ctx.Tracer.StartSpan("task.sequence." + s.Name)
	defer span.End()
	span.SetAttribute("task_count", len(s.Tasks))

	ctx.Metrics.Inc("sequence_tasks_total")

	errs := &MultiError{}
	for i, step := range s.Tasks {
		if err := ctx.Context.Err(); err != nil {
			span.RecordError(err)
			ctx.Logger.Warn("Sequential task stopped", map[string]interface{}{
				"task_name":       s.Name,
				"task_id":         ctx.TaskID,
				"completed_steps": i,
				"total_steps":     len(s.Tasks),
				"error":           err.Error(),
			})
			if err == stdContext.DeadlineExceeded {
				return fmt.Errorf("sequence timeout after %v (completed %d/%d steps): %w",
					s.Timeout, i, len(s.Tasks), err)
			}
			return err
		}

		if err := step.Execute(ctx); err != nil {
			span.RecordError(err)
			ctx.Logger.Error("Sequential task step failed", map[string]interface{}{
				"task_name":   s.Name,
				"task_id":     ctx.TaskID,
				"failed_step": i + 1,
				"total_steps": len(s.Tasks),
				"error":       err,
			})
			if !s.ContinueOnError {
				span.SetAttribute("failed_at_step", i+1)
				ctx.Metrics.Inc("sequence_errors_total")
				return err
			}
			errs.Add(err)
		}
	}

	if errs.HasErrors() {
		span.SetAttribute("failed_steps", len(errs.Errors))
		ctx.Metrics.Inc("sequence_errors_total")
		return errs
	}

	ctx.Metrics.Inc("sequence_success_total")
	return nil
}
