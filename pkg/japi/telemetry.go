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

const (
	MinFuel        = 15.0
	MaxFuel        = 100.0
	MinTemperature = 11.0
	MaxTemperature = 13.0
	MinVoltage     = 11.5
	MaxVoltage     = 13.5
)

// Status is the power and data state of the ship.
type Status struct {
	PayloadPower bool    `json:"payloadPower"`
	DataWaiting  bool    `json:"dataWaiting"`
	ChargeStatus bool    `json:"chargeStatus"`
	Voltage      float64 `json:"voltage"`
}

// SetVoltage stores v clamped to [MinVoltage, MaxVoltage].
func (s *Status) SetVoltage(v float64) {
	s.Voltage = clamp(v, MinVoltage, MaxVoltage)
}

// Telemetry is the document served by GET /telemetry.
type Telemetry struct {
	Coordinate Coordinate `json:"coordinate"`
	Rotation   Rotation   `json:"rotation"`
	Fuel       float64    `json:"fuel"`
	Temp       float64    `json:"temp"`
	Status     Status     `json:"status"`
	Sample     int        `json:"sample"`
}

// NewTelemetry returns a telemetry document with every bounded field at its
// lower bound.
func NewTelemetry() *Telemetry {
	t := &Telemetry{}
	t.SetFuel(MinFuel)
	t.SetTemp(MinTemperature)
	t.Status.SetVoltage(MinVoltage)
	return t
}

// SetFuel stores f clamped to [MinFuel, MaxFuel].
func (t *Telemetry) SetFuel(f float64) {
	t.Fuel = clamp(f, MinFuel, MaxFuel)
}

// SetTemp stores c clamped to [MinTemperature, MaxTemperature].
func (t *Telemetry) SetTemp(c float64) {
	t.Temp = clamp(c, MinTemperature, MaxTemperature)
}

// UpdateShipDirection overwrites position and attitude.
func (t *Telemetry) UpdateShipDirection(cmd PointCommand) {
	t.Coordinate = cmd.Coordinate
	t.Rotation = cmd.Rotation
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
