// SPDX-License-Identifier: MIT
package param

import (
	"math"

	"sidegain/internal/dsp"
)

// Range describes the set of values a parameter may take and how those
// values map onto a normalized [0, 1] knob position. Ranges are immutable
// after construction.
type Range interface {
	Min() float64
	Max() float64
	Contains(v float64) bool
	// Normalize maps a plain value onto [0, 1].
	Normalize(v float64) float64
	// Denormalize maps a [0, 1] knob position back to a plain value.
	Denormalize(n float64) float64
}

// LinearRange maps values onto the knob proportionally.
type LinearRange struct {
	MinValue float64
	MaxValue float64
}

func (r LinearRange) Min() float64 { return r.MinValue }
func (r LinearRange) Max() float64 { return r.MaxValue }

func (r LinearRange) Contains(v float64) bool {
	return v >= r.MinValue && v <= r.MaxValue
}

func (r LinearRange) Normalize(v float64) float64 {
	if r.MaxValue <= r.MinValue {
		return 0
	}
	return clamp01((v - r.MinValue) / (r.MaxValue - r.MinValue))
}

func (r LinearRange) Denormalize(n float64) float64 {
	return r.MinValue + clamp01(n)*(r.MaxValue-r.MinValue)
}

// SkewedRange warps the knob with an exponent so that perceptually even
// steps occupy even amounts of travel. Used with GainSkewFactor for
// parameters expressed as linear voltage gain.
type SkewedRange struct {
	MinValue float64
	MaxValue float64
	Factor   float64
}

func (r SkewedRange) Min() float64 { return r.MinValue }
func (r SkewedRange) Max() float64 { return r.MaxValue }

func (r SkewedRange) Contains(v float64) bool {
	return v >= r.MinValue && v <= r.MaxValue
}

func (r SkewedRange) Normalize(v float64) float64 {
	if r.MaxValue <= r.MinValue {
		return 0
	}
	proportion := clamp01((v - r.MinValue) / (r.MaxValue - r.MinValue))
	return math.Pow(proportion, r.Factor)
}

func (r SkewedRange) Denormalize(n float64) float64 {
	proportion := math.Pow(clamp01(n), 1.0/r.Factor)
	return r.MinValue + proportion*(r.MaxValue-r.MinValue)
}

// IntRange is a stepped range for integer-valued parameters. Targets are
// carried as float64 like every other parameter but snap to whole numbers.
type IntRange struct {
	MinValue int
	MaxValue int
}

func (r IntRange) Min() float64 { return float64(r.MinValue) }
func (r IntRange) Max() float64 { return float64(r.MaxValue) }

func (r IntRange) Contains(v float64) bool {
	return v >= float64(r.MinValue) && v <= float64(r.MaxValue)
}

func (r IntRange) Normalize(v float64) float64 {
	if r.MaxValue <= r.MinValue {
		return 0
	}
	return clamp01((v - float64(r.MinValue)) / float64(r.MaxValue-r.MinValue))
}

func (r IntRange) Denormalize(n float64) float64 {
	return math.Round(float64(r.MinValue) + clamp01(n)*float64(r.MaxValue-r.MinValue))
}

// GainRange builds the skewed range for a gain parameter declared in
// decibels. The bounds are converted to linear gain and the skew factor is
// chosen so the decibel midpoint lands at the middle of the knob.
func GainRange(minDB, maxDB float64) SkewedRange {
	return SkewedRange{
		MinValue: dsp.DbToGain(minDB),
		MaxValue: dsp.DbToGain(maxDB),
		Factor:   GainSkewFactor(minDB, maxDB),
	}
}

// GainSkewFactor computes the exponent that places the decibel midpoint of
// [minDB, maxDB] at normalized 0.5 when the range is stored as linear gain.
func GainSkewFactor(minDB, maxDB float64) float64 {
	minGain := dsp.DbToGain(minDB)
	maxGain := dsp.DbToGain(maxDB)
	middleGain := dsp.DbToGain((minDB + maxDB) / 2.0)

	return math.Log(0.5) / math.Log((middleGain-minGain)/(maxGain-minGain))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
