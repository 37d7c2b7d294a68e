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
	stdcontext "context"
	"fmt"
	"sync"

	"github.com/jazzpetri/rearm/task"
)

// Group manages independent tasks as a unit. Tasks in a group share nothing
// and are not ordered relative to each other.
type Group struct {
	mu    sync.Mutex
	tasks []*Task
}

// NewGroup creates a group holding tasks.
func NewGroup(tasks ...*Task) *Group {
	g := &Group{}
	for _, t := range tasks {
		g.Add(t)
	}
	return g
}

// Add appends t to the group. Nil tasks are ignored.
func (g *Group) Add(t *Task) {
	if t == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tasks = append(g.tasks, t)
}

// Tasks returns a copy of the group's tasks in insertion order.
func (g *Group) Tasks() []*Task {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Task, len(g.tasks))
	copy(out, g.tasks)
	return out
}

// Len returns the number of tasks in the group.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tasks)
}

// StartAll starts every task. A task that fails to start does not prevent
// the others from starting; all start errors are returned together.
func (g *Group) StartAll() error {
	errs := &task.MultiError{}
	for _, t := range g.Tasks() {
		if err := t.Start(); err != nil {
			errs.Add(fmt.Errorf("start %s (%s): %w", t.Name(), t.ID(), err))
		}
	}
	return errs.ErrorOrNil()
}

// CancelAll cancels every task in the group.
func (g *Group) CancelAll() {
	for _, t := range g.Tasks() {
		t.Cancel()
	}
}

// Wait blocks until every task is terminal and returns the failures of all
// tasks that stopped with an error. If ctx ends first, its error is returned.
func (g *Group) Wait(ctx stdcontext.Context) error {
	tasks := g.Tasks()
	for _, t := range tasks {
		select {
		case <-t.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	errs := &task.MultiError{}
	for _, t := range tasks {
		if err := t.Err(); err != nil {
			errs.Add(err)
		}
	}
	return errs.ErrorOrNil()
}
