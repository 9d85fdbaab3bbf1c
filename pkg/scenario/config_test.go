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
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/common/model"

	"github.com/spacecraft-cdh/japi-loadtest/pkg/japi"
)

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig("./testconfig.yaml")
	if err != nil {
		t.Fatal(err)
	}
	expect := &Config{
		TelemetryID: 4,
		PointID:     2,
		Point: japi.PointCommand{
			Coordinate: japi.Coordinate{X: 10.5, Y: -2, Z: 0},
			Rotation:   japi.Rotation{P: 1, Y: 180, R: -45},
		},
		DownloadImage: map[string]string{"image_id": "17"},
		PayloadState:  PayloadState{ID: 3, On: false},
		Wait: Wait{
			Min: model.Duration(500 * time.Millisecond),
			Max: model.Duration(2 * time.Second),
		},
		Tasks: map[string]int{
			TaskTelemetry:    3,
			TaskPoint:        1,
			TaskPayloadState: 1,
		},
	}
	if diff := cmp.Diff(expect, c); diff != "" {
		t.Fatalf("-expect vs +got: %v", diff)
	}
}

func TestParseConfigKeepsDefaults(t *testing.T) {
	c, err := parseConfigContent([]byte("telemetry_id: 9\n"))
	if err != nil {
		t.Fatal(err)
	}
	expect := DefaultConfig()
	expect.TelemetryID = 9
	if diff := cmp.Diff(expect, c); diff != "" {
		t.Fatalf("-expect vs +got: %v", diff)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestParseConfigErrors(t *testing.T) {
	for _, tc := range []struct {
		name, content, errContains string
	}{
		{"unknown field", "telemetry: 1\n", "cannot unmarshal"},
		{"unknown task", "tasks:\n  reboot: 1\n", `unknown task "reboot"`},
		{"negative weight", "tasks:\n  telemetry: -1\n  point: 1\n", "must not be negative"},
		{"all disabled", "tasks:\n  telemetry: 0\n  point: 0\n", "positive weight"},
		{"inverted wait", "wait:\n  min: 5s\n  max: 1s\n", "greater than wait.max"},
		{"bad duration", "wait:\n  min: soon\n", "cannot unmarshal"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseConfigContent([]byte(tc.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.errContains) {
				t.Fatalf("expected error containing %q, got %q", tc.errContains, err)
			}
		})
	}
}

func TestParseConfigMissingFile(t *testing.T) {
	if _, err := ParseConfig("./does-not-exist.yaml"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
