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

package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/spacecraft-cdh/japi-loadtest/pkg/japi"
	"github.com/spacecraft-cdh/japi-loadtest/pkg/loadgen"
	"github.com/spacecraft-cdh/japi-loadtest/pkg/report"
	"github.com/spacecraft-cdh/japi-loadtest/pkg/scenario"
)

type cliConfig struct {
	host           string
	users          int
	spawnRate      float64
	runTime        time.Duration
	maxRPS         float64
	requestTimeout time.Duration
	scenarioFile   string

	report reportOpts
}

type reportOpts struct {
	stdout         io.Writer
	file           string
	objstoreConfig string
	objstoreKey    string

	ghOwner, ghRepo string
	ghPR            int
	ghToken         string
}

type loadTest struct {
	runner *loadgen.Runner
	stats  *loadgen.Stats
}

func newLoadTest(cfg cliConfig, logger *slog.Logger, reg prometheus.Registerer) (*loadTest, error) {
	sc := scenario.DefaultConfig()
	if cfg.scenarioFile != "" {
		var err error
		if sc, err = scenario.ParseConfig(cfg.scenarioFile); err != nil {
			return nil, errors.Wrapf(err, "scenario file %s", cfg.scenarioFile)
		}
	}

	var limiter *rate.Limiter
	if cfg.maxRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.maxRPS), 1)
	}
	stats := loadgen.NewStats(reg)
	hc := &http.Client{Timeout: cfg.requestTimeout}

	jc, err := japi.NewClient(cfg.host, loadgen.NewClient(hc, stats, limiter))
	if err != nil {
		return nil, errors.Wrap(err, "host")
	}
	tasks, err := loadgen.NewTaskSet(scenario.Tasks(sc, jc))
	if err != nil {
		return nil, errors.Wrap(err, "tasks")
	}
	wait, err := scenario.WaitTime(sc)
	if err != nil {
		return nil, errors.Wrap(err, "wait time")
	}
	runner, err := loadgen.NewRunner(loadgen.RunnerOpts{
		Users:     cfg.users,
		SpawnRate: cfg.spawnRate,
		RunTime:   cfg.runTime,
	}, tasks, wait, logger, reg)
	if err != nil {
		return nil, errors.Wrap(err, "runner")
	}
	return &loadTest{runner: runner, stats: stats}, nil
}

// newReporter always prints to stdout and adds a reporter for every
// configured destination.
func newReporter(ctx context.Context, o reportOpts, logger *slog.Logger) (report.Reporter, error) {
	reporters := []report.Reporter{report.NewWriterReporter(o.stdout)}

	if o.file != "" {
		reporters = append(reporters, report.NewFileReporter(o.file))
	}

	if o.objstoreConfig != "" {
		if o.objstoreKey == "" {
			return nil, errors.New("objstore key must not be empty")
		}
		bkt, err := report.NewBucketFromConfig(o.objstoreConfig, log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr)))
		if err != nil {
			return nil, errors.Wrap(err, "objstore")
		}
		reporters = append(reporters, report.NewBucketReporter(bkt, o.objstoreKey, logger))
	}

	if o.ghOwner != "" || o.ghRepo != "" || o.ghPR != 0 {
		gh, err := report.NewGitHubReporter(ctx, o.ghToken, o.ghOwner, o.ghRepo, o.ghPR)
		if err != nil {
			return nil, errors.Wrap(err, "github")
		}
		reporters = append(reporters, gh)
	}
	return report.Multi(reporters...), nil
}
