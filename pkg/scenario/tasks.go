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

package scenario

import (
	"context"
	"time"

	"github.com/spacecraft-cdh/japi-loadtest/pkg/japi"
	"github.com/spacecraft-cdh/japi-loadtest/pkg/loadgen"
)

// Endpoint names used in failure diagnostics.
const (
	EndpointTelemetry     = "Telemetry"
	EndpointPoint         = "Point"
	EndpointDownloadImage = "Download image"
	EndpointPayloadState  = "Payload state"
)

// Tasks returns the weighted JAPI tasks of cfg. Each task issues exactly one
// request and only checks its status code.
func Tasks(cfg *Config, c *japi.Client) []loadgen.Task {
	// Declaration order is the order tasks are listed in logs.
	return []loadgen.Task{
		{
			Name:   TaskTelemetry,
			Weight: cfg.Tasks[TaskTelemetry],
			Fn: func(ctx context.Context, u *loadgen.User) error {
				code, err := c.Telemetry(ctx, cfg.TelemetryID)
				if err != nil {
					return err
				}
				loadgen.CheckStatus(u.Logger, EndpointTelemetry, code)
				return nil
			},
		},
		{
			Name:   TaskPoint,
			Weight: cfg.Tasks[TaskPoint],
			Fn: func(ctx context.Context, u *loadgen.User) error {
				code, err := c.Point(ctx, cfg.PointID, cfg.Point)
				if err != nil {
					return err
				}
				loadgen.CheckStatus(u.Logger, EndpointPoint, code)
				return nil
			},
		},
		{
			Name:   TaskDownloadImage,
			Weight: cfg.Tasks[TaskDownloadImage],
			Fn: func(ctx context.Context, u *loadgen.User) error {
				code, err := c.DownloadImage(ctx, cfg.DownloadImage)
				if err != nil {
					return err
				}
				loadgen.CheckStatus(u.Logger, EndpointDownloadImage, code)
				return nil
			},
		},
		{
			Name:   TaskPayloadState,
			Weight: cfg.Tasks[TaskPayloadState],
			Fn: func(ctx context.Context, u *loadgen.User) error {
				code, err := c.PayloadState(ctx, cfg.PayloadState.ID, cfg.PayloadState.On)
				if err != nil {
					return err
				}
				loadgen.CheckStatus(u.Logger, EndpointPayloadState, code)
				return nil
			},
		},
	}
}

// WaitTime returns the uniform wait between tasks described by cfg.
func WaitTime(cfg *Config) (loadgen.WaitTime, error) {
	return loadgen.Between(time.Duration(cfg.Wait.Min), time.Duration(cfg.Wait.Max))
}
