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

package repeat

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"

	execCtx "github.com/jazzpetri/rearm/context"
	"github.com/jazzpetri/rearm/task"
)

// appendName returns an action that appends name to log.
func appendName(log *[]string, name string) task.Task {
	return task.Func(func(*execCtx.ExecutionContext) error {
		*log = append(*log, name)
		return nil
	})
}

func TestTask_SequentialAction(t *testing.T) {
	// Arrange
	ctx, clk := newVirtualContext()
	var log []string
	seq := &task.SequentialTask{
		Name:  "sync",
		Tasks: []task.Task{appendName(&log, "pull"), appendName(&log, "push")},
	}
	rt, _ := New(ctx, 3, seq, Config{Name: "sync"})

	// Act
	_ = rt.Start()
	clk.Drain(0)

	// Assert
	want := []string{"pull", "push", "pull", "push", "pull", "push"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, expected %v", log, want)
	}
	if rt.State() != StateCompleted || rt.Iterations() != 3 {
		t.Errorf("State() = %s, Iterations() = %d, expected Completed after 3", rt.State(), rt.Iterations())
	}
}

func TestTask_SequentialActionStepFails(t *testing.T) {
	// Arrange
	ctx, clk := newVirtualContext()
	pushFailed := errors.New("push rejected")
	var log []string
	push := task.Func(func(ctx *execCtx.ExecutionContext) error {
		if ctx.Iteration == 1 {
			return pushFailed
		}
		log = append(log, "push")
		return nil
	})
	seq := &task.SequentialTask{Name: "sync", Tasks: []task.Task{appendName(&log, "pull"), push}}
	rt, _ := New(ctx, 5, seq, Config{Name: "sync"})

	// Act
	_ = rt.Start()
	clk.Drain(0)

	// Assert
	if rt.State() != StateCancelled || rt.Iterations() != 1 {
		t.Fatalf("State() = %s, Iterations() = %d, expected Cancelled after 1", rt.State(), rt.Iterations())
	}
	var ae *ActionError
	if !errors.As(rt.Err(), &ae) || ae.Iteration != 1 {
		t.Fatalf("Err() = %v, expected *ActionError for iteration 1", rt.Err())
	}
	if !errors.Is(rt.Err(), ErrActionFailed) || !errors.Is(rt.Err(), pushFailed) {
		t.Errorf("Err() = %v, expected to match ErrActionFailed and the step error", rt.Err())
	}
	if want := []string{"pull", "push", "pull"}; !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, expected %v", log, want)
	}
}

func TestTask_ParallelAction(t *testing.T) {
	replicaDown := errors.New("replica down")
	tests := []struct {
		name           string
		failOn         int
		wantState      State
		wantIterations int
		wantRuns       int64
	}{
		{"all branches succeed", -1, StateCompleted, 4, 12},
		{"branch fails on third iteration", 2, StateCancelled, 2, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			ctx, clk := newVirtualContext()
			var runs int64
			branch := task.Func(func(*execCtx.ExecutionContext) error {
				atomic.AddInt64(&runs, 1)
				return nil
			})
			flaky := task.Func(func(ctx *execCtx.ExecutionContext) error {
				atomic.AddInt64(&runs, 1)
				if ctx.Iteration == tt.failOn {
					return replicaDown
				}
				return nil
			})
			fanout := &task.ParallelTask{
				Name:           "replicas",
				Tasks:          []task.Task{branch, flaky, branch},
				MaxConcurrency: 2,
			}
			rt, _ := New(ctx, 4, fanout, Config{Name: "replicas"})

			// Act
			_ = rt.Start()
			clk.Drain(0)

			// Assert
			if rt.State() != tt.wantState || rt.Iterations() != tt.wantIterations {
				t.Errorf("State() = %s, Iterations() = %d, expected %s after %d",
					rt.State(), rt.Iterations(), tt.wantState, tt.wantIterations)
			}
			if got := atomic.LoadInt64(&runs); got != tt.wantRuns {
				t.Errorf("branch runs = %d, expected %d", got, tt.wantRuns)
			}
			if tt.wantState != StateCancelled {
				return
			}
			var me *task.MultiError
			if !errors.Is(rt.Err(), ErrActionFailed) || !errors.As(rt.Err(), &me) {
				t.Fatalf("Err() = %v, expected ActionError wrapping a MultiError", rt.Err())
			}
			if !errors.Is(rt.Err(), replicaDown) {
				t.Errorf("Err() = %v, expected to match the branch error", rt.Err())
			}
		})
	}
}

func TestTask_HTTPPollerWithRecovery(t *testing.T) {
	tests := []struct {
		name           string
		fallbackErr    error
		wantState      State
		wantIterations int
		wantRequests   int64
	}{
		{"fallback absorbs the outage", nil, StateCompleted, 4, 4},
		{"fallback fails", errors.New("cache unavailable"), StateCancelled, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var requests int64
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if atomic.AddInt64(&requests, 1) == 2 {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
				_, _ = w.Write([]byte("ok"))
			}))
			defer server.Close()

			ctx, clk := newVirtualContext()
			var causes []error
			poll := &task.RecoveryTask{
				Name: "poll-status",
				Task: &task.HTTPTask{Name: "status", Method: http.MethodGet, URL: server.URL},
				Fallback: task.Func(func(ctx *execCtx.ExecutionContext) error {
					cause, _ := task.PrimaryError(ctx)
					causes = append(causes, cause)
					return tt.fallbackErr
				}),
			}
			rt, _ := New(ctx, 4, poll, Config{Name: "poller"})

			// Act
			_ = rt.Start()
			clk.Drain(0)

			// Assert
			if rt.State() != tt.wantState || rt.Iterations() != tt.wantIterations {
				t.Errorf("State() = %s, Iterations() = %d, expected %s after %d",
					rt.State(), rt.Iterations(), tt.wantState, tt.wantIterations)
			}
			if got := atomic.LoadInt64(&requests); got != tt.wantRequests {
				t.Errorf("requests = %d, expected %d", got, tt.wantRequests)
			}
			if len(causes) != 1 || causes[0] == nil {
				t.Fatalf("fallback causes = %v, expected the 503 failure once", causes)
			}
			if tt.fallbackErr == nil {
				if rt.Err() != nil {
					t.Errorf("Err() = %v, expected nil", rt.Err())
				}
				return
			}
			var ce *task.CompensationError
			if !errors.Is(rt.Err(), ErrActionFailed) || !errors.As(rt.Err(), &ce) {
				t.Fatalf("Err() = %v, expected ActionError wrapping a CompensationError", rt.Err())
			}
			if !errors.Is(rt.Err(), tt.fallbackErr) || ce.Primary != causes[0] {
				t.Errorf("CompensationError = %+v, expected the fallback and primary errors", ce)
			}
		})
	}
}
