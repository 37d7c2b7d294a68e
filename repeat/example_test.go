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

package repeat_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jazzpetri/rearm/clock"
	execCtx "github.com/jazzpetri/rearm/context"
	"github.com/jazzpetri/rearm/repeat"
	"github.com/jazzpetri/rearm/task"
)

func Example() {
	clk := clock.NewVirtualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := execCtx.NewExecutionContext(context.Background(), clk)

	var log []int
	counter, _ := repeat.New(ctx, 3, task.Func(func(ec *execCtx.ExecutionContext) error {
		log = append(log, ec.Iteration)
		return nil
	}), repeat.Config{Name: "counter"})

	_ = counter.Start()
	clk.Drain(0)

	fmt.Println(log, counter.State())
	// Output: [0 1 2] Completed
}

func ExampleTask_Cancel() {
	clk := clock.NewVirtualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := execCtx.NewExecutionContext(context.Background(), clk)

	ticks := 0
	ticker, _ := repeat.New(ctx, 100, task.Func(func(*execCtx.ExecutionContext) error {
		ticks++
		return nil
	}), repeat.Config{Interval: time.Second})

	_ = ticker.Start()
	clk.AdvanceBy(3 * time.Second)
	ticker.Cancel()
	clk.AdvanceBy(time.Hour)

	fmt.Println(ticks, ticker.State())
	// Output: 3 Cancelled
}

func ExampleConfig_stopAfter() {
	clk := clock.NewVirtualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := execCtx.NewExecutionContext(context.Background(), clk)

	ticker, _ := repeat.New(ctx, 100, task.Func(func(*execCtx.ExecutionContext) error {
		return nil
	}), repeat.Config{Interval: 2 * time.Second, StopAfter: 10 * time.Second})

	_ = ticker.Start()
	clk.AdvanceBy(time.Minute)

	fmt.Println(ticker.Iterations(), ticker.State())
	// Output: 4 Cancelled
}

func ExampleActionError() {
	clk := clock.NewVirtualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := execCtx.NewExecutionContext(context.Background(), clk)

	flaky, _ := repeat.New(ctx, 5, task.Func(func(ec *execCtx.ExecutionContext) error {
		if ec.Iteration == 1 {
			return errors.New("connection reset")
		}
		return nil
	}), repeat.Config{Name: "poller"})

	_ = flaky.Start()
	clk.Drain(0)

	var ae *repeat.ActionError
	if errors.As(flaky.Err(), &ae) {
		fmt.Println(ae.Iteration, ae.Err)
	}
	fmt.Println(flaky.Iterations(), flaky.State())
	// Output:
	// 1 connection reset
	// 1 Cancelled
}
