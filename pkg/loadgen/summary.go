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

import "time"

// Summary is a point-in-time view of Stats.
type Summary struct {
	Start      time.Time         `json:"start"`
	Duration   time.Duration     `json:"duration_ns"`
	Endpoints  []EndpointSummary `json:"endpoints"`
	Aggregated EndpointSummary   `json:"aggregated"`
	Errors     []ErrorSummary    `json:"errors"`
}

// EndpointSummary holds the counters and latency distribution of one
// (method, name) pair. Latencies are in milliseconds.
type EndpointSummary struct {
	Method         string  `json:"method"`
	Name           string  `json:"name"`
	Requests       int64   `json:"requests"`
	Failures       int64   `json:"failures"`
	MinMs          float64 `json:"min_ms"`
	MedianMs       float64 `json:"median_ms"`
	AvgMs          float64 `json:"avg_ms"`
	P95Ms          float64 `json:"p95_ms"`
	P99Ms          float64 `json:"p99_ms"`
	MaxMs          float64 `json:"max_ms"`
	AvgSize        float64 `json:"avg_size_bytes"`
	RPS            float64 `json:"rps"`
	FailuresPerSec float64 `json:"failures_per_sec"`
}

type ErrorSummary struct {
	Method      string `json:"method"`
	Name        string `json:"name"`
	Error       string `json:"error"`
	Occurrences int64  `json:"occurrences"`
}
