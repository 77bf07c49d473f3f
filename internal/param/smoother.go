// SPDX-License-Identifier: MIT
package param

import (
	"math"
	"sync/atomic"

	"sidegain/internal/dsp"
)

// Smoother interpolates a gain-like value toward a target in the logarithmic
// domain, one step per audio sample, so that equal perceived-loudness changes
// take equal time regardless of absolute level.
//
// State advance (Next) is owned by exactly one thread, the real-time audio
// callback. Current is backed by an atomic cell so displays and
// serialization may read it from other goroutines without coordination.
type Smoother struct {
	smoothingMS float64
	sampleRate  float64

	current atomic.Uint64 // float64 bits, written by the advancing thread only

	target    float64
	stepSize  float64
	stepsLeft int
}

// NewSmoother creates a smoother with the given time constant in
// milliseconds. A non-positive time constant makes every retarget instant.
func NewSmoother(smoothingMS float64) *Smoother {
	if smoothingMS < 0 {
		smoothingMS = 0
	}
	return &Smoother{smoothingMS: smoothingMS}
}

// SetSampleRate fixes the trajectory length in samples. Must be called
// before processing starts and again whenever the host changes the rate. An
// in-flight trajectory is recomputed from the current value.
func (s *Smoother) SetSampleRate(sampleRate float64) {
	s.sampleRate = sampleRate
	if s.stepsLeft > 0 {
		s.SetTarget(s.target)
	}
}

// SetTarget begins a new trajectory from the current interpolated value to
// target over the configured smoothing duration. Changing the target
// mid-trajectory restarts from wherever the previous trajectory got to, so
// the output stays free of discontinuities.
func (s *Smoother) SetTarget(target float64) {
	s.target = target

	steps := int(math.Round(s.sampleRate * s.smoothingMS / 1000.0))
	current := s.Current()
	if steps < 1 || current == target {
		s.stepsLeft = 0
		s.storeCurrent(target)
		return
	}

	// The multiplicative step is undefined at zero; pin both endpoints just
	// above the silence floor. Gain ranges never reach it in practice.
	from := math.Max(current, dsp.MinusInfinityGain)
	to := math.Max(target, dsp.MinusInfinityGain)

	s.stepSize = math.Pow(to/from, 1.0/float64(steps))
	s.stepsLeft = steps
	s.storeCurrent(from)
}

// Next advances the trajectory by exactly one sample and returns the new
// value. The final step lands on the target exactly. Not safe for concurrent
// use by two processing threads.
func (s *Smoother) Next() float64 {
	switch {
	case s.stepsLeft > 1:
		next := s.Current() * s.stepSize
		s.stepsLeft--
		s.storeCurrent(next)
		return next
	case s.stepsLeft == 1:
		s.stepsLeft = 0
		s.storeCurrent(s.target)
		return s.target
	default:
		return s.Current()
	}
}

// Current returns the interpolated value without advancing the trajectory.
func (s *Smoother) Current() float64 {
	return math.Float64frombits(s.current.Load())
}

// Reset abandons any trajectory and pins the smoother to value.
func (s *Smoother) Reset(value float64) {
	s.target = value
	s.stepsLeft = 0
	s.storeCurrent(value)
}

// StepsLeft reports how many samples remain until the target is reached.
func (s *Smoother) StepsLeft() int {
	return s.stepsLeft
}

func (s *Smoother) storeCurrent(v float64) {
	s.current.Store(math.Float64bits(v))
}
