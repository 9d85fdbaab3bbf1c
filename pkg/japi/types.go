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

// Package japi holds the wire types of the spacecraft JAPI and a thin
// client for its endpoints.
package japi

const (
	PathTelemetry     = "/telemetry"
	PathPoint         = "/point"
	PathDownloadImage = "/downloadImage"
	PathPayloadState  = "/payloadState"
)

// Coordinate is the ship position.
type Coordinate struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Rotation is the ship attitude as pitch, yaw and roll in degrees.
type Rotation struct {
	P float64 `json:"p" yaml:"p"`
	Y float64 `json:"y" yaml:"y"`
	R float64 `json:"r" yaml:"r"`
}

// PointCommand is the body of PUT /point.
type PointCommand struct {
	Coordinate Coordinate `json:"coordinate" yaml:"coordinate"`
	Rotation   Rotation   `json:"rotation" yaml:"rotation"`
}

// DefaultPointCommand returns the point command sent by the stock scenario.
func DefaultPointCommand() PointCommand {
	return PointCommand{
		Coordinate: Coordinate{X: 1.0, Y: 2.0, Z: 3.0},
		Rotation:   Rotation{P: 0.0, Y: 90.0, R: 0.0},
	}
}

// DefaultDownloadImage returns the placeholder body of POST /downloadImage.
func DefaultDownloadImage() map[string]string {
	return map[string]string{"some_key": "some_value"}
}
