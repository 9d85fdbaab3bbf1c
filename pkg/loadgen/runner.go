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

// Package loadgen runs simulated users against an HTTP target and collects
// per-endpoint statistics.
package loadgen

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// RunnerOpts is the shape of a run.
type RunnerOpts struct {
	// Users is the number of concurrent simulated users.
	Users int
	// SpawnRate is the number of users started per second.
	SpawnRate float64
	// RunTime stops the run after the given duration. Zero runs until the
	// context is cancelled.
	RunTime time.Duration
}

func (o RunnerOpts) validate() error {
	if o.Users <= 0 {
		return errors.New("users must be positive")
	}
	if o.SpawnRate <= 0 {
		return errors.New("spawn rate must be positive")
	}
	if o.RunTime < 0 {
		return errors.New("run time must not be negative")
	}
	return nil
}

type Runner struct {
	opts   RunnerOpts
	tasks  *TaskSet
	wait   WaitTime
	logger *slog.Logger

	spawned atomic.Int64

	users     prometheus.Gauge
	taskCount *prometheus.CounterVec
}

// NewRunner validates opts and registers the runner collectors in reg. A
// nil reg skips registration.
func NewRunner(opts RunnerOpts, tasks *TaskSet, wait WaitTime, logger *slog.Logger, reg prometheus.Registerer) (*Runner, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		opts:   opts,
		tasks:  tasks,
		wait:   wait,
		logger: logger,
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "users",
			Help:      "Number of running simulated users.",
		}),
		taskCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_total",
				Help:      "Total amount of executed tasks",
			},
			[]string{"task"},
		),
	}
	if reg != nil {
		reg.MustRegister(r.users, r.taskCount)
	}
	return r, nil
}

// Run spawns users at the configured rate and blocks until all of them
// have stopped, either because RunTime elapsed or ctx was cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r.opts.RunTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.RunTime)
		defer cancel()
	}

	r.logger.Info("starting run",
		"users", r.opts.Users,
		"spawn_rate", r.opts.SpawnRate,
		"run_time", r.opts.RunTime,
		"tasks", r.tasks.Names(),
	)

	interval := time.Duration(float64(time.Second) / r.opts.SpawnRate)
	g, gctx := errgroup.WithContext(ctx)
	for i := 1; i <= r.opts.Users; i++ {
		if i > 1 && !sleep(gctx, interval) {
			break
		}
		u := NewUser(i, r.logger, r.tasks, r.wait)
		u.taskCount = r.taskCount

		r.spawned.Add(1)
		r.users.Inc()
		g.Go(func() error {
			defer r.users.Dec()
			u.Run(gctx)
			return nil
		})
	}
	if n := r.spawned.Load(); n == int64(r.opts.Users) {
		r.logger.Info("all users spawned", "users", n)
	}

	err := g.Wait()
	r.logger.Info("run finished", "users", r.spawned.Load())
	return err
}

// Spawned returns the number of users started so far.
func (r *Runner) Spawned() int {
	return int(r.spawned.Load())
}
