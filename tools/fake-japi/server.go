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
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spacecraft-cdh/japi-loadtest/pkg/japi"
)

const (
	namespace = "japi"
	subsystem = "api"

	// telemetrySample is the sample counter reported with every telemetry
	// document.
	telemetrySample = 50
)

type metrics struct {
	requestHistogram   *prometheus.HistogramVec
	requestsInProgress prometheus.Gauge
	requestsTotal      *prometheus.CounterVec
	requestErrorsTotal *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requestHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "A histogram of the API HTTP request durations in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 1.5, 25),
			},
			[]string{"method", "path", "status"},
		),
		requestsInProgress: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_in_progress",
				Help:      "The current number of API HTTP requests in progress.",
			}),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Total number of requests",
			},
			[]string{"method", "path", "status"},
		),
		requestErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_errors_total",
				Help:      "Total number of request errors",
			},
			[]string{"method", "path", "status"},
		),
	}
	reg.MustRegister(
		m.requestsTotal,
		m.requestErrorsTotal,
		m.requestHistogram,
		m.requestsInProgress,
	)
	return m
}

type responseOpts struct {
	baseLatency time.Duration
	errorRatio  float64

	// Whenever 10*outageDuration has passed, an outage is simulated that
	// lasts for outageDuration. During the outage errorRatio is increased by
	// a factor of 10 and baseLatency by a factor of 3. An outage is also
	// simulated right after start-up.
	outageDuration time.Duration
}

var routeOpts = map[string]map[string]responseOpts{
	japi.PathTelemetry: {
		http.MethodGet: {
			baseLatency:    5 * time.Millisecond,
			errorRatio:     0.005,
			outageDuration: 23 * time.Second,
		},
	},
	japi.PathPoint: {
		http.MethodPut: {
			baseLatency:    10 * time.Millisecond,
			errorRatio:     0.01,
			outageDuration: 47 * time.Second,
		},
	},
	japi.PathDownloadImage: {
		http.MethodPost: {
			baseLatency:    40 * time.Millisecond,
			errorRatio:     0.02,
			outageDuration: time.Minute,
		},
	},
	japi.PathPayloadState: {
		http.MethodPut: {
			baseLatency:    5 * time.Millisecond,
			errorRatio:     0.005,
			outageDuration: 13 * time.Second,
		},
	},
}

type serverOpts struct {
	// errorRatioScale multiplies every error ratio. 0 disables injected
	// errors.
	errorRatioScale float64
	// latencyScale multiplies every base latency. 0 disables injected
	// latency.
	latencyScale float64
}

// server simulates the JAPI endpoints. Ship state is kept per ID.
type server struct {
	opts    serverOpts
	start   time.Time
	logger  *slog.Logger
	metrics *metrics
	image   []byte

	mtx   sync.RWMutex
	ships map[int]*japi.Telemetry
}

func newServer(opts serverOpts, logger *slog.Logger, reg prometheus.Registerer) (*server, error) {
	img, err := placeholderImage()
	if err != nil {
		return nil, err
	}
	return &server{
		opts:    opts,
		start:   time.Now(),
		logger:  logger,
		metrics: newMetrics(reg),
		image:   img,
		ships:   map[int]*japi.Telemetry{},
	}, nil
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(japi.PathTelemetry, s.instrument(japi.PathTelemetry, s.handleTelemetry))
	mux.Handle(japi.PathPoint, s.instrument(japi.PathPoint, s.handlePoint))
	mux.Handle(japi.PathDownloadImage, s.instrument(japi.PathDownloadImage, s.handleDownloadImage))
	mux.Handle(japi.PathPayloadState, s.instrument(japi.PathPayloadState, s.handlePayloadState))
	return mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument enforces the method of path, injects latency and errors, and
// records the request metrics.
func (s *server) instrument(path string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.requestsInProgress.Inc()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		defer func() {
			s.metrics.requestsInProgress.Dec()
			status := fmt.Sprint(rec.status)
			s.metrics.requestHistogram.With(prometheus.Labels{
				"method": r.Method,
				"path":   path,
				"status": status,
			}).Observe(time.Since(start).Seconds())
			s.metrics.requestsTotal.WithLabelValues(r.Method, path, status).Inc()
			if rec.status >= http.StatusInternalServerError {
				s.metrics.requestErrorsTotal.WithLabelValues(r.Method, path, status).Inc()
			}
		}()

		methodOpts, ok := routeOpts[path][r.Method]
		if !ok {
			for m := range routeOpts[path] {
				w.Header().Set("Allow", m)
			}
			http.Error(rec, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		latencyFactor := 1.
		errorFactor := 1.
		if d := methodOpts.outageDuration; d > 0 && time.Since(s.start)%(10*d) < d {
			latencyFactor *= 3
			errorFactor *= 10
		}
		latency := float64(methodOpts.baseLatency) + rand.NormFloat64()*float64(methodOpts.baseLatency)/10
		if !sleep(r.Context(), time.Duration(latency*latencyFactor*s.opts.latencyScale)) {
			return
		}

		if rand.Float64() < methodOpts.errorRatio*errorFactor*s.opts.errorRatioScale {
			http.Error(rec, "injected error", http.StatusInternalServerError)
			return
		}
		next(rec, r)
	})
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
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

func (s *server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	id, err := queryInt(r, "ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mtx.RLock()
	t := japi.NewTelemetry()
	if ship, ok := s.ships[id]; ok {
		*t = *ship
	}
	s.mtx.RUnlock()

	t.Sample = telemetrySample
	writeJSON(w, t)
}

func (s *server) handlePoint(w http.ResponseWriter, r *http.Request) {
	id, err := queryInt(r, "ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var cmd japi.PointCommand
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cmd); err != nil {
		http.Error(w, "invalid point command: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mtx.Lock()
	s.ship(id).UpdateShipDirection(cmd)
	s.mtx.Unlock()

	s.logger.Debug("ship direction updated", "id", id, "coordinate", cmd.Coordinate, "rotation", cmd.Rotation)
	w.WriteHeader(http.StatusOK)
}

func (s *server) handleDownloadImage(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !json.Valid(b) {
		http.Error(w, "request body must be JSON", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(s.image)))
	_, _ = w.Write(s.image)
}

func (s *server) handlePayloadState(w http.ResponseWriter, r *http.Request) {
	id, err := queryInt(r, "ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	on, err := strconv.ParseBool(r.URL.Query().Get("state"))
	if err != nil {
		http.Error(w, "invalid state: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mtx.Lock()
	s.ship(id).Status.PayloadPower = on
	s.mtx.Unlock()

	w.WriteHeader(http.StatusOK)
}

// ship returns the state of id, creating it if needed. s.mtx must be held
// for writing.
func (s *server) ship(id int) *japi.Telemetry {
	t, ok := s.ships[id]
	if !ok {
		t = japi.NewTelemetry()
		s.ships[id] = t
	}
	return t
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, fmt.Errorf("missing %s query parameter", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s query parameter %q", key, v)
	}
	return i, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// placeholderImage renders the 8x8 PNG returned by downloadImage.
func placeholderImage() ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder image: %w", err)
	}
	return buf.Bytes(), nil
}
