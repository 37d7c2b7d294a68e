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

// Package task provides the Task port: the unit of work a repeating task
// runs on every iteration.
//
// Adapters:
//   - Func: a bare function, no extras
//   - InlineTask: a named function with tracing, metrics, logging, panic
//     recovery and an optional timeout
//   - RetryTask: retries a wrapped task with backoff
//   - RecoveryTask: runs a fallback task when the wrapped task fails
//
// A repeating task never retries a failed action by itself. Callers that want
// resilience wrap the action in RetryTask or RecoveryTask before handing it
// over.
//
// Example usage:
//
//	poll := &task.InlineTask{
//	    Name: "poll-inbox",
//	    Fn: func(ctx *context.ExecutionContext) error {
//	        ctx.Logger.Info("Polling", map[string]interface{}{"iteration": ctx.Iteration})
//	        return nil
//	    },
//	}
//	resilient := &task.RetryTask{Name: "poll-inbox", Task: poll, MaxAttempts: 3}
package task

import (
	"github.com/jazzpetri/rearm/context"
)

// Task is the unit of work executed once per iteration.
//
// Execute runs to completion; it must not hand work off and return early
// expecting to be resumed. The ExecutionContext identifies the execution
// (ctx.TaskID, ctx.Iteration) and carries the clock and observability tools.
// Tasks should respect ctx.Context for cancellation and should not modify the
// ExecutionContext itself.
//
// A non-nil error marks the execution as failed.
type Task interface {
	Execute(ctx *context.ExecutionContext) error
}

// Func adapts an ordinary function to the Task interface.
type Func func(ctx *context.ExecutionContext) error

// Execute calls f(ctx).
func (f Func) Execute(ctx *context.ExecutionContext) error {
	return f(ctx)
}
