// SPDX-License-Identifier: MIT
// Package dsp provides the small numeric conversions shared by the gain
// stage, the meters, and their displays. Everything here is allocation-free
// and safe to call from the real-time path.
package dsp

import "math"

const (
	// MinusInfinityDB is the decibel floor. Levels at or below the
	// corresponding linear gain are displayed as silence ("-inf dBFS").
	MinusInfinityDB = -100.0

	// MinusInfinityGain is the linear gain matching MinusInfinityDB.
	MinusInfinityGain = 1e-5

	// MeterRangeDB is the visible span of a level meter. A value at
	// -MeterRangeDB dBFS sits at the left edge of the bar, 0 dBFS at the right.
	MeterRangeDB = 60.0
)

// DbToGain converts decibels to a linear voltage gain factor.
func DbToGain(db float64) float64 {
	return math.Pow(10.0, db/20.0)
}

// GainToDb converts a linear voltage gain factor to decibels.
// Values at or below MinusInfinityGain clamp to MinusInfinityDB.
func GainToDb(gain float64) float64 {
	if gain <= MinusInfinityGain {
		return MinusInfinityDB
	}
	return 20.0 * math.Log10(gain)
}

// MeterNormalized maps a decibel level onto a [0, 1] bar position using
// (db + MeterRangeDB) / MeterRangeDB, clamped to the displayable range.
func MeterNormalized(db float64) float64 {
	n := (db + MeterRangeDB) / MeterRangeDB
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}
