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
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// User is one simulated client: pick a task, run it, wait, repeat.
type User struct {
	ID     int
	Logger *slog.Logger

	tasks *TaskSet
	wait  WaitTime

	// Set by Runner; nil for standalone users.
	taskCount *prometheus.CounterVec
}

func NewUser(id int, logger *slog.Logger, tasks *TaskSet, wait WaitTime) *User {
	return &User{
		ID:     id,
		Logger: logger.With("user", id),
		tasks:  tasks,
		wait:   wait,
	}
}

// Run loops until ctx is done. Task errors are logged and never stop the
// loop.
func (u *User) Run(ctx context.Context) {
	for ctx.Err() == nil {
		t := u.tasks.Pick()
		if u.taskCount != nil {
			u.taskCount.WithLabelValues(t.Name).Inc()
		}
		if err := t.Fn(ctx, u); err != nil && ctx.Err() == nil {
			u.Logger.Error("task failed", "task", t.Name, "err", err)
		}
		if !sleep(ctx, u.wait.Next()) {
			return
		}
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
