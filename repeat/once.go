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
	"time"

	"github.com/jazzpetri/rearm/context"
	"github.com/jazzpetri/rearm/task"
)

// Once creates and starts a task that runs action a single time after delay.
// A zero delay still defers the action to the scheduler; it never runs
// inside Once.
func Once(ctx *context.ExecutionContext, delay time.Duration, action task.Task, cfg Config) (*Task, error) {
	cfg.Interval = delay
	t, err := New(ctx, 1, action, cfg)
	if err != nil {
		return nil, err
	}
	if err := t.Start(); err != nil {
		return nil, err
	}
	return t, nil
}
