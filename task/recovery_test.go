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
	"context"
	"errors"
	"strings"
	"testing"

	execCtx "github.com/jazzpetri/rearm/context"
)

func TestRecoveryTask_Execute_PrimarySuccess(t *testing.T) {
	compensated := false
	recovery := &RecoveryTask{
		Name: "recovery",
		Task: Func(func(*execCtx.ExecutionContext) error { return nil }),
		Fallback: Func(func(*execCtx.ExecutionContext) error {
			compensated = true
			return nil
		}),
	}

	if err := recovery.Execute(newTestContext()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if compensated {
		t.Error("fallback should not run when primary succeeds")
	}
}

// TestRecoveryTask_Execute_FallbackSeesPrimaryError tests a compensated failure
func TestRecoveryTask_Execute_FallbackSeesPrimaryError(t *testing.T) {
	// Arrange
	diskFull := errors.New("disk full")
	recorder := &testErrorRecorder{}
	metrics := &testMetrics{counters: make(map[string]float64)}
	ctx := newTestContext().WithErrorRecorder(recorder).WithMetrics(metrics)

	var seen error
	recovery := &RecoveryTask{
		Name: "flush",
		Task: Func(func(*execCtx.ExecutionContext) error { return diskFull }),
		Fallback: Func(func(ctx *execCtx.ExecutionContext) error {
			seen, _ = PrimaryError(ctx)
			return nil
		}),
	}

	// Act
	err := recovery.Execute(ctx)

	// Assert
	if err != nil {
		t.Fatalf("Expected fallback to absorb the failure, got %v", err)
	}
	if seen != diskFull {
		t.Errorf("PrimaryError() = %v, expected %v", seen, diskFull)
	}
	if len(recorder.compensations) != 1 || recorder.compensations[0] != "flush" {
		t.Errorf("compensations = %v", recorder.compensations)
	}
	if got := metrics.get("recovery_compensated_total"); got != 1 {
		t.Errorf("recovery_compensated_total = %v, expected 1", got)
	}
}

func TestRecoveryTask_Execute_FallbackFailure(t *testing.T) {
	primary := errors.New("disk full")
	fallback := errors.New("rollback failed")
	logger := &testLogger{}
	recovery := &RecoveryTask{
		Name:     "flush",
		Task:     Func(func(*execCtx.ExecutionContext) error { return primary }),
		Fallback: Func(func(*execCtx.ExecutionContext) error { return fallback }),
	}

	err := recovery.Execute(newTestContext().WithLogger(logger))

	var ce *CompensationError
	if !errors.As(err, &ce) || ce.Name != "flush" {
		t.Fatalf("Execute() = %v, expected *CompensationError", err)
	}
	if !errors.Is(err, primary) || !errors.Is(err, fallback) {
		t.Errorf("Execute() = %v, expected to match both errors", err)
	}
	if !logger.has("error", "Fallback failed") {
		t.Error("expected a Fallback failed log entry")
	}
}

func TestRecoveryTask_Execute_When(t *testing.T) {
	transient := errors.New("connection reset")
	tests := []struct {
		name        string
		primary     error
		wantErr     error
		compensated bool
	}{
		{"handled failure", transient, nil, true},
		{"cancellation passes through", context.Canceled, context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compensated := false
			recovery := &RecoveryTask{
				Name: "poll",
				Task: Func(func(*execCtx.ExecutionContext) error { return tt.primary }),
				When: func(err error) bool { return !errors.Is(err, context.Canceled) },
				Fallback: Func(func(*execCtx.ExecutionContext) error {
					compensated = true
					return nil
				}),
			}

			err := recovery.Execute(newTestContext())

			if err != tt.wantErr {
				t.Errorf("Execute() = %v, expected %v", err, tt.wantErr)
			}
			if compensated != tt.compensated {
				t.Errorf("compensated = %v, expected %v", compensated, tt.compensated)
			}
		})
	}
}

func TestPrimaryError_OutsideFallback(t *testing.T) {
	if err, ok := PrimaryError(newTestContext()); ok || err != nil {
		t.Errorf("PrimaryError() = %v, %v, expected nil, false", err, ok)
	}
	if _, ok := PrimaryError(nil); ok {
		t.Error("PrimaryError(nil) should report false")
	}
}

func TestRecoveryTask_Execute_Validation(t *testing.T) {
	noop := Func(func(*execCtx.ExecutionContext) error { return nil })
	tests := []struct {
		name     string
		recovery *RecoveryTask
		want     string
	}{
		{"empty name", &RecoveryTask{Task: noop, Fallback: noop}, "name is required"},
		{"nil task", &RecoveryTask{Name: "r", Fallback: noop}, "task is required"},
		{"nil fallback", &RecoveryTask{Name: "r", Task: noop}, "fallback is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.recovery.Execute(newTestContext())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Execute() = %v, expected error containing %q", err, tt.want)
			}
		})
	}
}
