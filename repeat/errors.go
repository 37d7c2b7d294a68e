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
	"fmt"
)

var (
	// ErrInvalidState matches every *InvalidStateError.
	ErrInvalidState = errors.New("repeat: invalid state")

	// ErrActionFailed matches every *ActionError.
	ErrActionFailed = errors.New("repeat: action failed")

	// ErrNegativeBound is returned by New for a bound below zero.
	ErrNegativeBound = errors.New("repeat: bound must not be negative")
)

// InvalidStateError reports an operation invoked from a state that does not
// permit it. The task is left unchanged.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("repeat: cannot %s task in state %s", e.Op, e.State)
}

// Is makes errors.Is(err, ErrInvalidState) true.
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// ActionError wraps an error returned (or a panic raised) by a task's action.
// The failing execution is not counted and the task is cancelled.
type ActionError struct {
	TaskID    string
	Name      string
	Iteration int
	Err       error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("repeat: task %s failed on iteration %d: %v", e.Name, e.Iteration, e.Err)
}

// Unwrap returns the action's error.
func (e *ActionError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrActionFailed) true.
func (e *ActionError) Is(target error) bool {
	return target == ErrActionFailed
}
