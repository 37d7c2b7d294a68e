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
	"testing"
)

func TestMultiError_Add(t *testing.T) {
	me := &MultiError{}
	err1 := errors.New("error 1")
	err2 := errors.New("error 2")

	me.Add(err1)
	me.Add(nil)
	me.Add(err2)

	if len(me.Errors) != 2 {
		t.Fatalf("Expected 2 errors, got %d", len(me.Errors))
	}
	if me.Errors[0] != err1 || me.Errors[1] != err2 {
		t.Errorf("Errors = %v", me.Errors)
	}
}

func TestMultiError_Add_Flatten(t *testing.T) {
	inner := &MultiError{}
	inner.Add(errors.New("error 1"))
	inner.Add(errors.New("error 2"))

	outer := &MultiError{}
	outer.Add(errors.New("error 3"))
	outer.Add(fmt.Errorf("wrapped: %w", inner))

	if len(outer.Errors) != 3 {
		t.Errorf("Expected 3 errors, got %d", len(outer.Errors))
	}
}

func TestMultiError_Error(t *testing.T) {
	tests := []struct {
		name string
		errs []error
		want string
	}{
		{"empty", nil, ""},
		{"single", []error{errors.New("a")}, "a"},
		{"several", []error{errors.New("a"), errors.New("b")}, "multiple errors (2): a; b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			me := &MultiError{Errors: tt.errs}
			if got := me.Error(); got != tt.want {
				t.Errorf("Error() = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestMultiError_ErrorOrNil(t *testing.T) {
	me := &MultiError{}
	if me.ErrorOrNil() != nil {
		t.Error("empty MultiError should return nil")
	}

	me.Add(errors.New("a"))
	if me.ErrorOrNil() == nil {
		t.Error("non-empty MultiError should return itself")
	}
}

func TestMultiError_Is(t *testing.T) {
	sentinel := errors.New("sentinel")
	me := &MultiError{}
	me.Add(errors.New("other"))
	me.Add(fmt.Errorf("context: %w", sentinel))

	if !errors.Is(me, sentinel) {
		t.Error("errors.Is should find the wrapped sentinel")
	}
}
