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
	"sync"

	"github.com/jazzpetri/rearm/context"
)

// ParallelTask runs tasks concurrently as one action and returns once all of
// them have finished. The enclosing repeating task re-arms only after the
// slowest branch returns, so branches of different iterations never overlap.
//
// Failures of all branches are collected into a MultiError.
//
// Example:
//
//	fanout := &ParallelTask{
//	    Name:           "check-all",
//	    Tasks:          []Task{checkA, checkB, checkC},
//	    MaxConcurrency: 2,
//	}
type ParallelTask struct {
	// Name is used in logs, traces, and metrics.
	Name string

	// Tasks are executed concurrently.
	Tasks []Task

	// MaxConcurrency limits the number of branches running at once.
	// Zero means no limit.
	MaxConcurrency int
}

// Execute runs every branch and waits for all of them. Panics in a branch are
// recovered and reported as that branch's error.
func (p *ParallelTask) Execute(ctx *context.ExecutionContext) error {
	if p.Name == "" {
		return fmt.Errorf("parallel task: name is required")
	}
	if len(p.Tasks) == 0 {
		return fmt.Errorf("parallel task: tasks list cannot be empty")
	}
	if p.MaxConcurrency < 0 {
		return fmt.Errorf("parallel task: max concurrency must not be negative")
	}

	span := ctx.Tracer.StartSpan("task.parallel." + p.Name)
	defer span.End()
	span.SetAttribute("task_count", len(p.Tasks))

	ctx.Metrics.Inc("parallel_tasks_total")

	limit := p.MaxConcurrency
	if limit == 0 || limit > len(p.Tasks) {
		limit = len(p.Tasks)
	}
	sem := make(chan struct{}, limit)

	errs := make([]error, len(p.Tasks))
	var wg sync.WaitGroup
	for i, branch := range p.Tasks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, branch Task) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("branch %d panicked: %v", i, r)
				}
			}()
			errs[i] = branch.Execute(ctx)
		}(i, branch)
	}
	wg.Wait()

	merr := &MultiError{}
	for i, err := range errs {
		if err == nil {
			continue
		}
		merr.Add(err)
		ctx.Logger.Error("Parallel task branch failed", map[string]interface{}{
			"task_name": p.Name,
			"task_id":   ctx.TaskID,
			"branch":    i,
			"error":     err,
		})
	}

	if merr.HasErrors() {
		span.RecordError(merr)
		span.SetAttribute("failed_branches", len(merr.Errors))
		ctx.Metrics.Inc("parallel_errors_total")
		return merr
	}

	ctx.Metrics.Inc("parallel_success_total")
	return nil
}
