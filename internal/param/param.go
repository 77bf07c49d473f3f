// SPDX-License-Identifier: MIT
/*
Package param implements host-automatable processing parameters with
click-free smoothing.

A Parameter is split across two execution contexts. The controller side (UI,
host automation, session restore) mutates the target value through SetTarget;
the real-time side consumes one smoothed value per sample through Next. The
two sides meet at an atomic target slot plus a generation counter, so the
audio thread never takes a lock and the controller thread never touches
interpolation state.
*/
package param

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
)

// ErrOutOfRange is returned by SetTarget when the requested value falls
// outside the parameter's declared range. The previous target is kept.
var ErrOutOfRange = errors.New("value out of range")

// DefaultSmoothingMS is the smoothing time constant applied when a parameter
// does not declare its own.
const DefaultSmoothingMS = 50.0

// Parameter is one named, ranged, smoothed processing value. Identity and
// range are fixed at construction; only the target value changes afterwards.
type Parameter struct {
	id           string
	name         string
	unit         string
	rng          Range
	defaultValue float64
	smoothingMS  float64

	format func(float64) string
	parse  func(string) (float64, error)

	// Shared with the controller thread.
	target     atomic.Uint64 // float64 bits
	generation atomic.Uint32

	// Owned by the real-time thread.
	smoother *Smoother
	seenGen  uint32
}

// New creates a parameter. The id must stay stable across persisted
// sessions; the default value must lie within the range.
func New(id, name string, rng Range, defaultValue float64) *Parameter {
	p := &Parameter{
		id:           id,
		name:         name,
		rng:          rng,
		defaultValue: defaultValue,
		smoothingMS:  DefaultSmoothingMS,
		smoother:     NewSmoother(DefaultSmoothingMS),
	}
	p.target.Store(math.Float64bits(defaultValue))
	p.smoother.Reset(defaultValue)
	return p
}

// WithUnit sets the display unit suffix.
func (p *Parameter) WithUnit(unit string) *Parameter {
	p.unit = unit
	return p
}

// WithSmoothing overrides the smoothing time constant in milliseconds.
// A zero constant makes target changes take effect on the next sample.
func (p *Parameter) WithSmoothing(ms float64) *Parameter {
	if ms < 0 {
		ms = 0
	}
	p.smoothingMS = ms
	p.smoother = NewSmoother(ms)
	p.smoother.Reset(p.defaultValue)
	return p
}

// WithFormatter installs a value-to-string function and its fallible
// inverse.
func (p *Parameter) WithFormatter(format func(float64) string, parse func(string) (float64, error)) *Parameter {
	p.format = format
	p.parse = parse
	return p
}

func (p *Parameter) ID() string            { return p.id }
func (p *Parameter) Name() string          { return p.name }
func (p *Parameter) Unit() string          { return p.unit }
func (p *Parameter) Range() Range          { return p.rng }
func (p *Parameter) DefaultValue() float64 { return p.defaultValue }
func (p *Parameter) SmoothingMS() float64  { return p.smoothingMS }

// SetTarget validates v against the range and, if accepted, begins a new
// smoothing trajectory toward it. Rejected values leave the previous target
// and any in-flight trajectory untouched. Safe to call from a controller
// goroutine while the audio thread is calling Next.
func (p *Parameter) SetTarget(v float64) error {
	if !p.rng.Contains(v) {
		return fmt.Errorf("%s: %w: %g outside [%g, %g]",
			p.id, ErrOutOfRange, v, p.rng.Min(), p.rng.Max())
	}
	p.target.Store(math.Float64bits(v))
	p.generation.Add(1)
	return nil
}

// SetTargetFromString parses a display string and applies it as the new
// target. Parse failures leave the parameter unchanged.
func (p *Parameter) SetTargetFromString(s string) error {
	v, err := p.Parse(s)
	if err != nil {
		return err
	}
	return p.SetTarget(v)
}

// Target returns the most recently accepted target value.
func (p *Parameter) Target() float64 {
	return math.Float64frombits(p.target.Load())
}

// Current returns the present interpolated value without advancing the
// trajectory. Used for display and serialization.
func (p *Parameter) Current() float64 {
	return p.smoother.Current()
}

// Next returns the next interpolated value and advances the trajectory by
// one sample. It first picks up any target change published by the
// controller side. Real-time thread only.
func (p *Parameter) Next() float64 {
	if g := p.generation.Load(); g != p.seenGen {
		p.seenGen = g
		p.smoother.SetTarget(p.Target())
	}
	return p.smoother.Next()
}

// SetSampleRate reconfigures the trajectory length. Call from the host's
// initialize path, never from the audio callback.
func (p *Parameter) SetSampleRate(sampleRate float64) {
	p.smoother.SetSampleRate(sampleRate)
}

// ResetSmoothing pins the interpolated value to the current target,
// abandoning any trajectory.
func (p *Parameter) ResetSmoothing() {
	p.smoother.Reset(p.Target())
}

// NormalizedTarget maps the target onto the range's [0, 1] knob position.
func (p *Parameter) NormalizedTarget() float64 {
	return p.rng.Normalize(p.Target())
}

// Format renders v for display using the installed formatter, falling back
// to two decimals plus the unit.
func (p *Parameter) Format(v float64) string {
	if p.format != nil {
		return p.format(v)
	}
	if p.unit != "" {
		return fmt.Sprintf("%.2f %s", v, p.unit)
	}
	return fmt.Sprintf("%.2f", v)
}

// Parse converts a display string back into a plain value using the
// installed parser, falling back to a bare float parse.
func (p *Parameter) Parse(s string) (float64, error) {
	if p.parse != nil {
		v, err := p.parse(s)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", p.id, err)
		}
		return v, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: parse %q: %w", p.id, s, err)
	}
	return v, nil
}
