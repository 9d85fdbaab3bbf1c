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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStatsSummary(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewStats(reg)

	for i := 1; i <= 100; i++ {
		s.Record("GET", "/telemetry?ID=1", 200, time.Duration(i)*time.Millisecond, 10, nil)
	}
	s.Record("PUT", "/point?ID=1", 200, 5*time.Millisecond, 0, nil)
	s.Record("PUT", "/point?ID=1", 501, 5*time.Millisecond, 0, nil)
	s.Record("POST", "/downloadImage", 0, time.Millisecond, 0, errors.New("connection refused"))

	sum := s.Summary()

	type row struct {
		Method             string
		Name               string
		Requests, Failures int64
	}
	var got []row
	for _, e := range sum.Endpoints {
		got = append(got, row{e.Method, e.Name, e.Requests, e.Failures})
	}
	expect := []row{
		{"POST", "/downloadImage", 1, 1},
		{"PUT", "/point?ID=1", 2, 1},
		{"GET", "/telemetry?ID=1", 100, 0},
	}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Fatalf("-expect vs +got: %v", diff)
	}
	if sum.Aggregated.Requests != 103 || sum.Aggregated.Failures != 2 {
		t.Errorf("unexpected aggregate %+v", sum.Aggregated)
	}

	tel := sum.Endpoints[2]
	if !(tel.MinMs <= tel.MedianMs && tel.MedianMs <= tel.P95Ms && tel.P95Ms <= tel.P99Ms && tel.P99Ms <= tel.MaxMs) {
		t.Errorf("quantiles not monotonic: %+v", tel)
	}
	// hdrhistogram keeps 3 significant digits.
	if tel.MedianMs < 49.9 || tel.MedianMs > 50.1 {
		t.Errorf("expected median ~50ms, got %v", tel.MedianMs)
	}
	if tel.AvgSize != 10 {
		t.Errorf("expected avg size 10, got %v", tel.AvgSize)
	}

	// Equal occurrences sort by name.
	expectErrors := []ErrorSummary{
		{Method: "POST", Name: "/downloadImage", Error: "connection refused", Occurrences: 1},
		{Method: "PUT", Name: "/point?ID=1", Error: "HTTP 501", Occurrences: 1},
	}
	if diff := cmp.Diff(expectErrors, sum.Errors); diff != "" {
		t.Fatalf("-expect vs +got: %v", diff)
	}

	if v := testutil.ToFloat64(s.requests.WithLabelValues("GET", "/telemetry?ID=1", "200")); v != 100 {
		t.Errorf("expected 100 requests in collector, got %v", v)
	}
	if v := testutil.ToFloat64(s.requests.WithLabelValues("POST", "/downloadImage", "error")); v != 1 {
		t.Errorf("expected 1 errored request in collector, got %v", v)
	}
	if v := testutil.ToFloat64(s.failures.WithLabelValues("PUT", "/point?ID=1")); v != 1 {
		t.Errorf("expected 1 failure in collector, got %v", v)
	}
}

func TestStatsReset(t *testing.T) {
	s := NewStats(nil)
	s.Record("GET", "/telemetry?ID=1", 500, time.Millisecond, 0, nil)
	s.Reset()

	sum := s.Summary()
	if len(sum.Endpoints) != 0 || len(sum.Errors) != 0 || sum.Aggregated.Requests != 0 {
		t.Fatalf("expected empty summary after reset, got %+v", sum)
	}
}

func TestStatsConcurrentRecord(t *testing.T) {
	s := NewStats(nil)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				s.Record("GET", "/telemetry?ID=1", 200, time.Millisecond, 1, nil)
				if i%100 == 0 {
					_ = s.Summary()
				}
			}
		}()
	}
	wg.Wait()

	if got := s.Summary().Aggregated.Requests; got != 4000 {
		t.Fatalf("expected 4000 requests, got %d", got)
	}
}
