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
	"fmt"
	"time"

	"github.com/jazzpetri/rearm/context"
)

// RetryTask wraps a task with retry logic and backoff.
//
// A repeating task treats any action error as terminal. Wrapping the action
// in a RetryTask moves retries inside a single iteration: the iteration only
// fails once every attempt has failed.
//
// Backoff waits on ctx.Clock.After, so with a VirtualClock a non-zero backoff
// blocks until another goroutine advances the clock. Use Backoff 0 in
// single-goroutine tests.
//
// Example with exponential backoff:
//
//	retry := &RetryTask{
//	    Name:        "fetch",
//	    Task:        fetch,
//	    MaxAttempts: 5,
//	    BackoffFunc: func(attempt int) time.Duration {
//	        return time.Duration(1<<uint(attempt)) * 100 * time.Millisecond
//	    },
//	}
type RetryTask struct {
	// Name is used in logs, traces, and metrics.
	Name string

	// Task is the task to execute with retry logic.
	Task Task

	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int

	// Backoff is the fixed delay between attempts, used when BackoffFunc is nil.
	Backoff time.Duration

	// BackoffFunc returns the delay before the next attempt. attempt starts
	// at 1 for the first retry. Overrides Backoff.
	BackoffFunc func(attempt int) time.Duration
}

// Execute runs the wrapped task until it succeeds or MaxAttempts is reached.
//
// Returns:
//   - nil if any attempt succeeds
//   - the last error if all attempts fail
//   - a validation error if configuration is invalid
//   - ctx.Context.Err() if the context is cancelled before or between attempts
func (r *RetryTask) Execute(ctx *context.ExecutionContext) error {
	if r.Name == "" {
		return fmt.Errorf("retry task: name is required")
	}
	if r.Task == nil {
		return fmt.Errorf("retry task: task is required")
	}
	if r.MaxAttempts < 1 {
		return fmt.Errorf("retry task: max attempts must be at least 1")
	}

	span := ctx.Tracer.StartSpan("task.retry." + r.Name)
	defer span.End()

	ctx.Metrics.Inc("retry_tasks_total")

	var lastErr error
	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		if err := ctx.Context.Err(); err != nil {
			span.RecordError(err)
			ctx.Metrics.Inc("retry_cancelled_total")
			ctx.Logger.Warn("Retry task cancelled", map[string]interface{}{
				"task_name": r.Name,
				"attempt":   attempt,
			})
			return err
		}

		ctx.Metrics.Inc("retry_attempts_total")
		err := r.Task.Execute(ctx)
		if err == nil {
			span.SetAttribute("attempts", attempt)
			ctx.Metrics.Inc("retry_success_total")
			if attempt > 1 {
				ctx.Logger.Info("Retry task succeeded after retries", map[string]interface{}{
					"task_name": r.Name,
					"task_id":   ctx.TaskID,
					"attempts":  attempt,
				})
			}
			return nil
		}

		lastErr = err
		ctx.Logger.Warn("Retry attempt failed", map[string]interface{}{
			"task_name": r.Name,
			"task_id":   ctx.TaskID,
			"attempt":   attempt,
			"max":       r.MaxAttempts,
			"error":     err.Error(),
		})

		if attempt == r.MaxAttempts {
			break
		}

		backoff := r.Backoff
		if r.BackoffFunc != nil {
			backoff = r.BackoffFunc(attempt)
		}
		ctx.ErrorRecorder.RecordRetry(attempt, backoff)

		if backoff > 0 {
			select {
			case <-ctx.Clock.After(backoff):
			case <-ctx.Context.Done():
				err := ctx.Context.Err()
				span.RecordError(err)
				ctx.Metrics.Inc("retry_cancelled_total")
				ctx.Logger.Warn("Retry task cancelled during backoff", map[string]interface{}{
					"task_name": r.Name,
					"attempt":   attempt,
				})
				return err
			}
		}
	}

	span.RecordError(lastErr)
	span.SetAttribute("attempts", r.MaxAttempts)
	ctx.Metrics.Inc("retry_failure_total")
	ctx.Logger.Error("Retry task failed after all attempts", map[string]interface{}{
		"task_name": r.Name,
		"task_id":   ctx.TaskID,
		"attempts":  r.MaxAttempts,
		"error":     lastErr,
	})

	return lastErr
}
