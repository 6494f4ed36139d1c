// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

// parsedFix is the result of extracting fields from an accepted GGA
// or RMC sentence by the spec's index mapping.
type parsedFix struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	FixTime   string
}
