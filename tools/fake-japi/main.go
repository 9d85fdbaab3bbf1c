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
	"net/http/pprof"
	"os"
	"path/filepath"
	"syscall"

	"github.com/nelkinda/health-go"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/alecthomas/kingpin.v2"
)

func main() {
	cfg := struct {
		listenAddress            string
		logLevel                 string
		disableProcessMetrics    bool
		disableGoMetrics         bool
		disableMetricCompression bool
		opts                     serverOpts
	}{}

	app := kingpin.New(filepath.Base(os.Args[0]), "fake-japi simulates the JAPI service with configurable latency and errors")
	app.HelpFlag.Short('h')

	app.Flag("listen-address", "Address to serve the API and metrics on.").
		Default(":5000").
		StringVar(&cfg.listenAddress)
	app.Flag("log.level", "Logging level, available values: 'debug', 'info', 'warn', 'error'.").
		Default("info").
		StringVar(&cfg.logLevel)
	app.Flag("error-ratio-scale", "Multiplier of the per route error ratios. 0 disables injected errors.").
		Default("1").
		Float64Var(&cfg.opts.errorRatioScale)
	app.Flag("latency-scale", "Multiplier of the per route base latencies. 0 disables injected latency.").
		Default("1").
		Float64Var(&cfg.opts.latencyScale)
	app.Flag("disable-process-metrics", "Include (potentially expensive) process_* metrics.").
		BoolVar(&cfg.disableProcessMetrics)
	app.Flag("disable-go-metrics", "Include (potentially expensive) go_* metrics.").
		BoolVar(&cfg.disableGoMetrics)
	app.Flag("disable-metrics-compression", "Allow gzip compression of metrics.").
		BoolVar(&cfg.disableMetricCompression)

	kingpin.MustParse(app.Parse(os.Args[1:]))

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.logLevel)); err != nil {
		log.Fatal("failed to parse -log.level flag", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	registry := prometheus.NewRegistry()
	if !cfg.disableProcessMetrics {
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	if !cfg.disableGoMetrics {
		registry.MustRegister(collectors.NewGoCollector())
	}

	srv, err := newServer(cfg.opts, logger, registry)
	if err != nil {
		logger.Error("creating server failed", "err", err)
		os.Exit(1)
	}

	mux := srv.routes()
	mux.Handle("/debug/pprof/", http.HandlerFunc(pprof.Index))
	mux.Handle("/debug/pprof/cmdline", http.HandlerFunc(pprof.Cmdline))
	mux.Handle("/debug/pprof/profile", http.HandlerFunc(pprof.Profile))
	mux.Handle("/debug/pprof/symbol", http.HandlerFunc(pprof.Symbol))
	mux.Handle("/debug/pprof/trace", http.HandlerFunc(pprof.Trace))
	mux.Handle("/metrics", promhttp.HandlerFor(
		registry,
		promhttp.HandlerOpts{
			DisableCompression: cfg.disableMetricCompression,
		},
	))
	healthHandler := health.New(health.Health{}).Handler
	mux.HandleFunc("/-/health", healthHandler)
	mux.HandleFunc("/-/ready", healthHandler)

	var g run.Group
	{
		httpSrv := &http.Server{Addr: cfg.listenAddress, Handler: mux}
		g.Add(func() error {
			logger.Info("server is ready to handle requests", "address", cfg.listenAddress)
			return httpSrv.ListenAndServe()
		}, func(_ error) {
			_ = httpSrv.Shutdown(context.Background())
		})
	}
	g.Add(run.SignalHandler(context.Background(), os.Interrupt, syscall.SIGTERM))
	if err := g.Run(); err != nil {
		logger.Info("fake-japi stopped", "reason", err)
	}
}
