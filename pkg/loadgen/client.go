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
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Client sends requests through an *http.Client and records each of them
// in Stats once the response body is closed. It is safe for concurrent use
// by all users of a run.
type Client struct {
	hc      *http.Client
	stats   *Stats
	limiter *rate.Limiter
}

// NewClient returns a recording client. limiter may be nil for no rate cap.
func NewClient(hc *http.Client, stats *Stats, limiter *rate.Limiter) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{hc: hc, stats: stats, limiter: limiter}
}

// Do implements japi.Doer.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	name := req.URL.RequestURI()
	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		// Requests aborted by the end of the run are not failures of the target.
		if ctx.Err() == nil {
			c.stats.Record(req.Method, name, 0, time.Since(start), 0, err)
		}
		return nil, err
	}

	resp.Body = &recordingBody{
		ReadCloser: resp.Body,
		ctx:        ctx,
		record: func(size int64) {
			c.stats.Record(req.Method, name, resp.StatusCode, time.Since(start), size, nil)
		},
	}
	return resp, nil
}

type recordingBody struct {
	io.ReadCloser

	ctx    context.Context
	n      int64
	once   sync.Once
	record func(size int64)
}

func (b *recordingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.n += int64(n)
	return n, err
}

func (b *recordingBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(func() {
		if b.ctx.Err() == nil {
			b.record(b.n)
		}
	})
	return err
}
