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
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "loadgen"

	// Latencies are tracked in microseconds from 1µs to 1h.
	histMin     = 1
	histMax     = int64(time.Hour / time.Microsecond)
	histSigFigs = 3
)

type statsKey struct {
	method, name string
}

type errorKey struct {
	method, name, msg string
}

type statsEntry struct {
	requests int64
	failures int64
	bytes    int64
	latency  *hdrhistogram.Histogram
}

func newStatsEntry() *statsEntry {
	return &statsEntry{latency: hdrhistogram.New(histMin, histMax, histSigFigs)}
}

func (e *statsEntry) add(d time.Duration, size int64, failed bool) {
	e.requests++
	e.bytes += size
	if failed {
		e.failures++
	}
	us := d.Microseconds()
	if us < histMin {
		us = histMin
	}
	if us > histMax {
		us = histMax
	}
	// Cannot fail: us is within the trackable range.
	_ = e.latency.RecordValue(us)
}

// Stats aggregates request outcomes per (method, name) for the end-of-run
// summary and mirrors them into Prometheus collectors.
type Stats struct {
	mtx     sync.Mutex
	start   time.Time
	entries map[statsKey]*statsEntry
	errors  map[errorKey]int64

	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewStats returns Stats whose collectors are registered in reg. A nil reg
// skips registration.
func NewStats(reg prometheus.Registerer) *Stats {
	s := &Stats{
		start:   time.Now(),
		entries: map[statsKey]*statsEntry{},
		errors:  map[errorKey]int64{},

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total amount of requests",
			},
			[]string{"method", "name", "status"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failed_requests_total",
				Help:      "Amount of failed requests",
			},
			[]string{"method", "name"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Request duration",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"method", "name"},
		),
	}
	if reg != nil {
		reg.MustRegister(s.requests, s.failures, s.duration)
	}
	return s
}

// Record adds one completed request. A request fails when err is non-nil
// or status is not 200.
func (s *Stats) Record(method, name string, status int, d time.Duration, size int64, err error) {
	failed := err != nil || status != 200
	code := strconv.Itoa(status)
	if err != nil {
		code = "error"
	}
	s.requests.WithLabelValues(method, name, code).Inc()
	s.duration.WithLabelValues(method, name).Observe(d.Seconds())
	if failed {
		s.failures.WithLabelValues(method, name).Inc()
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	k := statsKey{method: method, name: name}
	e, ok := s.entries[k]
	if !ok {
		e = newStatsEntry()
		s.entries[k] = e
	}
	e.add(d, size, failed)

	if failed {
		msg := "HTTP " + code
		if err != nil {
			msg = err.Error()
		}
		s.errors[errorKey{method: method, name: name, msg: msg}]++
	}
}

// Reset drops everything recorded so far and restarts the clock. The
// Prometheus collectors are left alone.
func (s *Stats) Reset() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.start = time.Now()
	s.entries = map[statsKey]*statsEntry{}
	s.errors = map[errorKey]int64{}
}

// Summary snapshots the statistics recorded so far.
func (s *Stats) Summary() *Summary {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := time.Now()
	elapsed := now.Sub(s.start)
	sum := &Summary{
		Start:    s.start,
		Duration: elapsed,
	}

	total := newStatsEntry()
	for k, e := range s.entries {
		sum.Endpoints = append(sum.Endpoints, summarize(k.method, k.name, e, elapsed))
		total.requests += e.requests
		total.failures += e.failures
		total.bytes += e.bytes
		total.latency.Merge(e.latency)
	}
	sort.Slice(sum.Endpoints, func(i, j int) bool {
		a, b := sum.Endpoints[i], sum.Endpoints[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Method < b.Method
	})
	sum.Aggregated = summarize("", "Aggregated", total, elapsed)

	for k, n := range s.errors {
		sum.Errors = append(sum.Errors, ErrorSummary{Method: k.method, Name: k.name, Error: k.msg, Occurrences: n})
	}
	sort.Slice(sum.Errors, func(i, j int) bool {
		a, b := sum.Errors[i], sum.Errors[j]
		if a.Occurrences != b.Occurrences {
			return a.Occurrences > b.Occurrences
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		return a.Error < b.Error
	})
	return sum
}

func summarize(method, name string, e *statsEntry, elapsed time.Duration) EndpointSummary {
	es := EndpointSummary{
		Method:   method,
		Name:     name,
		Requests: e.requests,
		Failures: e.failures,
	}
	if e.requests == 0 {
		return es
	}
	ms := func(us int64) float64 { return float64(us) / 1000 }
	es.MinMs = ms(e.latency.Min())
	es.MedianMs = ms(e.latency.ValueAtQuantile(50))
	es.AvgMs = e.latency.Mean() / 1000
	es.P95Ms = ms(e.latency.ValueAtQuantile(95))
	es.P99Ms = ms(e.latency.ValueAtQuantile(99))
	es.MaxMs = ms(e.latency.Max())
	es.AvgSize = float64(e.bytes) / float64(e.requests)
	if elapsed > 0 {
		es.RPS = float64(e.requests) / elapsed.Seconds()
		es.FailuresPerSec = float64(e.failures) / elapsed.Seconds()
	}
	return es
}
