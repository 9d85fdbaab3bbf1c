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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/spacecraft-cdh/japi-loadtest/pkg/loadgen"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTestAgainstServer(t *testing.T) {
	var (
		mtx  sync.Mutex
		seen = map[string]int{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mtx.Lock()
		seen[r.Method+" "+r.URL.Path]++
		mtx.Unlock()
		_, _ = io.Copy(io.Discard, r.Body)
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	scenarioFile := writeFile(t, "scenario.yml", "wait:\n  min: 5ms\n  max: 10ms\n")
	reg := prometheus.NewRegistry()
	lt, err := newLoadTest(cliConfig{
		host:           srv.URL,
		users:          3,
		spawnRate:      100,
		runTime:        400 * time.Millisecond,
		requestTimeout: time.Second,
		scenarioFile:   scenarioFile,
	}, discardLogger(), reg)
	if err != nil {
		t.Fatal(err)
	}

	if err := lt.runner.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := lt.runner.Spawned(); got != 3 {
		t.Fatalf("expected 3 users, got %d", got)
	}

	s := lt.stats.Summary()
	if s.Aggregated.Requests == 0 {
		t.Fatal("no requests recorded")
	}
	if s.Aggregated.Failures != 0 {
		t.Fatalf("unexpected failures: %+v", s.Errors)
	}
	for _, e := range s.Endpoints {
		switch e.Method + " " + e.Name {
		case "GET /telemetry?ID=1", "PUT /point?ID=1", "POST /downloadImage":
		default:
			t.Errorf("unexpected endpoint %s %s", e.Method, e.Name)
		}
	}

	mtx.Lock()
	defer mtx.Unlock()
	if seen["PUT /payloadState"] != 0 {
		t.Fatal("payload_state has weight 0 and must not run")
	}
	if n, err := testutil.GatherAndCount(reg, "loadgen_requests_total"); err != nil || n == 0 {
		t.Fatalf("expected loadgen_requests_total series, got %d (%v)", n, err)
	}
}

func TestNewLoadTestErrors(t *testing.T) {
	badScenario := writeFile(t, "bad.yml", "tasks:\n  telemetry: -1\n")
	for _, tc := range []struct {
		name string
		cfg  cliConfig
	}{
		{"bad host", cliConfig{host: "localhost:5000", users: 1, spawnRate: 1}},
		{"missing scenario", cliConfig{host: "http://localhost:5000", users: 1, spawnRate: 1, scenarioFile: "nope.yml"}},
		{"invalid scenario", cliConfig{host: "http://localhost:5000", users: 1, spawnRate: 1, scenarioFile: badScenario}},
		{"no users", cliConfig{host: "http://localhost:5000", users: 0, spawnRate: 1}},
		{"no spawn rate", cliConfig{host: "http://localhost:5000", users: 1, spawnRate: 0}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := newLoadTest(tc.cfg, discardLogger(), nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewReporter(t *testing.T) {
	dir := t.TempDir()
	objstoreConfig := writeFile(t, "objstore.yml", "type: FILESYSTEM\nconfig:\n  directory: "+filepath.Join(dir, "bucket")+"\n")

	var stdout bytes.Buffer
	r, err := newReporter(context.Background(), reportOpts{
		stdout:         &stdout,
		file:           filepath.Join(dir, "summary.json"),
		objstoreConfig: objstoreConfig,
		objstoreKey:    "runs/summary.json",
	}, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	stats := loadgen.NewStats(nil)
	stats.Record(http.MethodGet, "/telemetry?ID=1", http.StatusOK, 10*time.Millisecond, 100, nil)
	if err := r.Report(context.Background(), stats.Summary()); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(stdout.String(), "/telemetry?ID=1") {
		t.Fatalf("summary not printed:\n%s", stdout.String())
	}
	for _, path := range []string{
		filepath.Join(dir, "summary.json"),
		filepath.Join(dir, "bucket", "runs", "summary.json"),
	} {
		b, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		var s loadgen.Summary
		if err := json.Unmarshal(b, &s); err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if s.Aggregated.Requests != 1 {
			t.Fatalf("%s: expected 1 request, got %d", path, s.Aggregated.Requests)
		}
	}
}

func TestNewReporterErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts reportOpts
	}{
		{"missing objstore config", reportOpts{objstoreConfig: "nope.yml", objstoreKey: "k"}},
		{"empty objstore key", reportOpts{objstoreConfig: "nope.yml"}},
		{"github without token", reportOpts{ghOwner: "o", ghRepo: "r", ghPR: 1}},
		{"incomplete github target", reportOpts{ghOwner: "o", ghToken: "t"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tc.opts.stdout = io.Discard
			if _, err := newReporter(context.Background(), tc.opts, discardLogger()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
