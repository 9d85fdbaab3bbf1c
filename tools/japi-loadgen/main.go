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
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nelkinda/health-go"
	"github.com/oklog/run"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/alecthomas/kingpin.v2"
)

func main() {
	var (
		cfg         cliConfig
		listenAddr  string
		logLevelStr string
	)

	app := kingpin.New(filepath.Base(os.Args[0]), "japi-loadgen: simulates users of the JAPI service "+
		"(telemetry, point and downloadImage) and reports the request statistics of the run.")
	app.HelpFlag.Short('h')
	app.Flag("host", "Base URL of the JAPI service, e.g. http://localhost:5000.").
		Required().
		StringVar(&cfg.host)
	app.Flag("users", "Number of concurrent simulated users.").
		Default("1").
		IntVar(&cfg.users)
	app.Flag("spawn-rate", "Users started per second until --users is reached.").
		Default("1").
		Float64Var(&cfg.spawnRate)
	app.Flag("run-time", "Stop after this duration. 0 runs until interrupted.").
		Default("0").
		DurationVar(&cfg.runTime)
	app.Flag("max-rps", "Upper bound of requests per second over all users. 0 disables the cap.").
		Default("0").
		Float64Var(&cfg.maxRPS)
	app.Flag("request-timeout", "Timeout of a single request.").
		Default("30s").
		DurationVar(&cfg.requestTimeout)
	app.Flag("scenario.file", "Path to the scenario file. Built-in defaults apply when unset.").
		StringVar(&cfg.scenarioFile)
	app.Flag("web.listen-address", "Address to expose metrics and health endpoints on.").
		Default(":8080").
		StringVar(&listenAddr)
	app.Flag("log.level", "Logging level, available values: 'debug', 'info', 'warn', 'error'.").
		Default("info").
		StringVar(&logLevelStr)
	app.Flag("report.file", "Write the JSON summary to this file.").
		StringVar(&cfg.report.file)
	app.Flag("report.objstore-config", "Path to an objstore config file. The JSON summary is uploaded when set.").
		StringVar(&cfg.report.objstoreConfig)
	app.Flag("report.objstore-key", "Object key of the uploaded summary.").
		Default("japi-loadgen/summary.json").
		StringVar(&cfg.report.objstoreKey)
	app.Flag("github.owner", "Owner of the repository to comment the summary on.").
		StringVar(&cfg.report.ghOwner)
	app.Flag("github.repo", "Repository to comment the summary on.").
		StringVar(&cfg.report.ghRepo)
	app.Flag("github.pr", "Issue or pull request number to comment the summary on.").
		IntVar(&cfg.report.ghPR)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(logLevelStr)); err != nil {
		log.Fatal("failed to parse -log.level flag", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg.report.ghToken = os.Getenv("GITHUB_TOKEN")
	cfg.report.stdout = os.Stdout

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	lt, err := newLoadTest(cfg, logger, reg)
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	reporter, err := newReporter(context.Background(), cfg.report, logger)
	if err != nil {
		logger.Error("invalid report configuration", "err", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	healthHandler := health.New(health.Health{}).Handler
	mux.HandleFunc("/-/health", healthHandler)
	mux.HandleFunc("/-/ready", healthHandler)

	var g run.Group
	{
		ctx, cancel := context.WithCancel(context.Background())
		g.Add(func() error {
			return lt.runner.Run(ctx)
		}, func(_ error) {
			cancel()
		})
	}
	{
		httpSrv := &http.Server{Addr: listenAddr, Handler: mux}
		g.Add(func() error {
			logger.Info("server is ready to handle requests", "address", listenAddr)
			return httpSrv.ListenAndServe()
		}, func(_ error) {
			_ = httpSrv.Shutdown(context.Background())
		})
	}
	g.Add(run.SignalHandler(context.Background(), os.Interrupt, syscall.SIGTERM))

	if err := g.Run(); err != nil {
		var sigErr run.SignalError
		if !errors.As(err, &sigErr) {
			logger.Error("running japi-loadgen failed", "err", err)
			os.Exit(1)
		}
		logger.Info("received signal, stopping", "signal", sigErr.Signal)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := reporter.Report(ctx, lt.stats.Summary()); err != nil {
		logger.Error("reporting summary failed", "err", err)
		cancel()
		os.Exit(1)
	}
	logger.Info("load test finished")
}
