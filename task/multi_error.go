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
	"errors"
	"fmt"
	"strings"
)

// MultiError collects the failures of several independent tasks into one
// error. repeat.Group uses it to report every task that ended in failure.
//
// errors.Is and errors.As see through a MultiError to each collected error.
//
// Example:
//
//	me := &MultiError{}
//	me.Add(errA)
//	me.Add(errB)
//	return me.ErrorOrNil() // "multiple errors (2): a; b"
type MultiError struct {
	Errors []error
}

// Add appends err. Nil errors are ignored and nested MultiErrors are flattened.
func (m *MultiError) Add(err error) {
	if err == nil {
		return
	}

	var me *MultiError
	if errors.As(err, &me) {
		m.Errors = append(m.Errors, me.Errors...)
		return
	}

	m.Errors = append(m.Errors, err)
}

// HasErrors returns true if any errors have been collected.
func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// Error implements the error interface.
// Format: "multiple errors (N): error1; error2"; a single error is returned as-is.
func (m *MultiError) Error() string {
	if !m.HasErrors() {
		return ""
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "multiple errors (%d): ", len(m.Errors))
	for i, err := range m.Errors {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// ErrorOrNil returns m if it holds errors, nil otherwise.
func (m *MultiError) ErrorOrNil() error {
	if !m.HasErrors() {
		return nil
	}
	return m
}
