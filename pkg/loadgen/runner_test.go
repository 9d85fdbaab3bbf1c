// Copyright 2026 The Prometheus Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package loadgen

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUserRunsUntilCancelled(t *testing.T) {
	var calls atomic.Int64
	ts, err := NewTaskSet([]Task{{Name: "count", Weight: 1, Fn: func(context.Context, *User) error {
		calls.Add(1)
		return errors.New("failing tasks do not stop the user")
	}}})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		NewUser(1, discardLogger(), ts, Constant(5*time.Millisecond)).Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("user did not stop after cancellation")
	}
	if n := calls.Load(); n < 2 {
		t.Fatalf("expected several task runs, got %d", n)
	}
}

func TestUserWaitsBetweenTasks(t *testing.T) {
	var (
		mtx   sync.Mutex
		times []time.Time
	)
	ts, err := NewTaskSet([]Task{{Name: "stamp", Weight: 1, Fn: func(context.Context, *User) error {
		mtx.Lock()
		times = append(times, time.Now())
		mtx.Unlock()
		return nil
	}}})
	if err != nil {
		t.Fatal(err)
	}
	wait, err := Between(20*time.Millisecond, 40*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	NewUser(1, discardLogger(), ts, wait).Run(ctx)

	mtx.Lock()
	defer mtx.Unlock()
	if len(times) < 3 {
		t.Fatalf("expected at least 3 task runs, got %d", len(times))
	}
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < 20*time.Millisecond {
			t.Errorf("gap %d is %v, below the 20ms minimum wait", i, gap)
		}
	}
}

func TestRunnerSpawnsAllUsers(t *testing.T) {
	seen := sync.Map{}
	ts, err := NewTaskSet([]Task{{Name: "mark", Weight: 1, Fn: func(_ context.Context, u *User) error {
		seen.Store(u.ID, true)
		return nil
	}}})
	if err != nil {
		t.Fatal(err)
	}

	reg := prometheus.NewRegistry()
	r, err := NewRunner(RunnerOpts{Users: 5, SpawnRate: 200, RunTime: 200 * time.Millisecond}, ts, Constant(10*time.Millisecond), discardLogger(), reg)
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("run time not honoured, took %v", elapsed)
	}
	if r.Spawned() != 5 {
		t.Fatalf("expected 5 users, got %d", r.Spawned())
	}
	for id := 1; id <= 5; id++ {
		if _, ok := seen.Load(id); !ok {
			t.Errorf("user %d never ran a task", id)
		}
	}
	if v := testutil.ToFloat64(r.users); v != 0 {
		t.Errorf("expected users gauge back to 0, got %v", v)
	}
	if v := testutil.ToFloat64(r.taskCount.WithLabelValues("mark")); v < 5 {
		t.Errorf("expected at least 5 tasks counted, got %v", v)
	}
}

func TestRunnerStopsSpawningOnCancel(t *testing.T) {
	ts, err := NewTaskSet([]Task{{Name: "noop", Weight: 1, Fn: noop}})
	if err != nil {
		t.Fatal(err)
	}
	// One user every second: only the first one starts before cancel.
	r, err := NewRunner(RunnerOpts{Users: 10, SpawnRate: 1}, ts, Constant(10*time.Millisecond), discardLogger(), nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if r.Spawned() != 1 {
		t.Fatalf("expected 1 user spawned before cancel, got %d", r.Spawned())
	}
}

func TestNewRunnerValidates(t *testing.T) {
	ts, err := NewTaskSet([]Task{{Name: "noop", Weight: 1, Fn: noop}})
	if err != nil {
		t.Fatal(err)
	}
	for name, opts := range map[string]RunnerOpts{
		"no users":      {Users: 0, SpawnRate: 1},
		"no spawn rate": {Users: 1, SpawnRate: 0},
		"negative time": {Users: 1, SpawnRate: 1, RunTime: -time.Second},
	} {
		if _, err := NewRunner(opts, ts, Constant(0), discardLogger(), nil); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
