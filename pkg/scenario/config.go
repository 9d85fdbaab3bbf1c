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

// Package scenario defines what a simulated JAPI user does: which endpoints
// it calls, with which payloads, how often, and how long it waits between
// calls.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/prometheus/common/model"
	"gopkg.in/yaml.v2"

	"github.com/spacecraft-cdh/japi-loadtest/pkg/japi"
)

const (
	TaskTelemetry     = "telemetry"
	TaskPoint         = "point"
	TaskDownloadImage = "download_image"
	TaskPayloadState  = "payload_state"
)

var knownTasks = map[string]struct{}{
	TaskTelemetry:     {},
	TaskPoint:         {},
	TaskDownloadImage: {},
	TaskPayloadState:  {},
}

// Config is the scenario file. Fields left out of the file keep the values
// of DefaultConfig.
type Config struct {
	TelemetryID   int               `yaml:"telemetry_id"`
	PointID       int               `yaml:"point_id"`
	Point         japi.PointCommand `yaml:"point"`
	DownloadImage map[string]string `yaml:"download_image"`
	PayloadState  PayloadState      `yaml:"payload_state"`
	Wait          Wait              `yaml:"wait"`
	// Tasks maps a task name to its weight. Weight 0 disables the task.
	Tasks map[string]int `yaml:"tasks"`
}

type PayloadState struct {
	ID int  `yaml:"id"`
	On bool `yaml:"on"`
}

// Wait bounds the uniform pause between two tasks of a user.
type Wait struct {
	Min model.Duration `yaml:"min"`
	Max model.Duration `yaml:"max"`
}

// DefaultConfig returns the stock scenario: telemetry, point and
// download_image with equal weight, 1s to 3s between tasks.
func DefaultConfig() *Config {
	return &Config{
		TelemetryID:   1,
		PointID:       1,
		Point:         japi.DefaultPointCommand(),
		DownloadImage: japi.DefaultDownloadImage(),
		PayloadState:  PayloadState{ID: 1, On: true},
		Wait: Wait{
			Min: model.Duration(time.Second),
			Max: model.Duration(3 * time.Second),
		},
		Tasks: map[string]int{
			TaskTelemetry:     1,
			TaskPoint:         1,
			TaskDownloadImage: 1,
			TaskPayloadState:  0,
		},
	}
}

func ParseConfig(file string) (*Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %v: %w", file, err)
	}
	return parseConfigContent(data)
}

func parseConfigContent(content []byte) (*Config, error) {
	cfg := DefaultConfig()
	// Map blocks in the file replace the defaults instead of merging.
	cfg.Tasks, cfg.DownloadImage = nil, nil
	if err := yaml.UnmarshalStrict(content, cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal data: %w", err)
	}
	if cfg.Tasks == nil {
		cfg.Tasks = DefaultConfig().Tasks
	}
	if cfg.DownloadImage == nil {
		cfg.DownloadImage = japi.DefaultDownloadImage()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks task names, weights and the wait range.
func (c *Config) Validate() error {
	var (
		names    []string
		positive bool
	)
	for name := range c.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := knownTasks[name]; !ok {
			return fmt.Errorf("unknown task %q", name)
		}
		w := c.Tasks[name]
		if w < 0 {
			return fmt.Errorf("task %q: weight must not be negative, got %d", name, w)
		}
		if w > 0 {
			positive = true
		}
	}
	if !positive {
		return errors.New("at least one task needs a positive weight")
	}
	if c.Wait.Min < 0 {
		return fmt.Errorf("wait.min must not be negative, got %v", c.Wait.Min)
	}
	if c.Wait.Min > c.Wait.Max {
		return fmt.Errorf("wait.min %v is greater than wait.max %v", c.Wait.Min, c.Wait.Max)
	}
	return nil
}
