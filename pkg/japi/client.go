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

package japi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues one request per call against a JAPI host. It never retries
// and never looks at response bodies; callers only get the status code.
type Client struct {
	baseURL string
	doer    Doer
}

func NewClient(baseURL string, doer Doer) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse host %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("host %q: scheme must be http or https", baseURL)
	}
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), doer: doer}, nil
}

// Telemetry issues GET /telemetry?ID=<id>.
func (c *Client) Telemetry(ctx context.Context, id int) (int, error) {
	return c.do(ctx, http.MethodGet, PathTelemetry, idQuery(id), nil)
}

// Point issues PUT /point?ID=<id> with cmd as JSON body.
func (c *Client) Point(ctx context.Context, id int, cmd PointCommand) (int, error) {
	return c.do(ctx, http.MethodPut, PathPoint, idQuery(id), cmd)
}

// DownloadImage issues POST /downloadImage with payload as JSON body.
func (c *Client) DownloadImage(ctx context.Context, payload map[string]string) (int, error) {
	return c.do(ctx, http.MethodPost, PathDownloadImage, nil, payload)
}

// PayloadState issues PUT /payloadState?ID=<id>&state=<on>.
func (c *Client) PayloadState(ctx context.Context, id int, on bool) (int, error) {
	q := idQuery(id)
	q.Set("state", strconv.FormatBool(on))
	return c.do(ctx, http.MethodPut, PathPayloadState, q, nil)
}

func idQuery(id int) url.Values {
	return url.Values{"ID": []string{strconv.Itoa(id)}}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (int, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return 0, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	// Drain so the connection goes back to the pool.
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
