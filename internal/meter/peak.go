// SPDX-License-Identifier: MIT
/*
Package meter implements a decaying peak-level estimator shared between the
real-time processing thread and any number of display consumers.

Thread Safety:
- One writer (the audio callback), zero or more readers
- A single atomically-accessed float64 cell per meter, no locks
- Readers may observe a value mid-update; the estimate self-corrects on the
  next block, so relaxed consistency is acceptable
*/
package meter

import (
	"math"
	"sync/atomic"
)

// Peak holds the current peak estimate as linear voltage gain (not decibels).
// The zero value is ready to use and represents silence.
type Peak struct {
	bits atomic.Uint64
}

// NewPeak returns a meter initialized to silence.
func NewPeak() *Peak {
	return &Peak{}
}

// Load returns the current estimate. Never negative. Safe to call from any
// goroutine; never blocks.
func (p *Peak) Load() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Store replaces the estimate. Only the producing thread should call this.
func (p *Peak) Store(v float64) {
	p.bits.Store(math.Float64bits(v))
}

// Update feeds one amplitude observation into the meter. Attack is
// instantaneous: an amplitude above the current estimate replaces it
// outright. Otherwise the estimate decays exponentially toward the new
// amplitude:
//
//	next = current*decayWeight + amplitude*(1-decayWeight)
//
// decayWeight is a per-sample constant derived from the sample rate (see
// audio.DecayWeight) such that sustained silence drops the estimate by 12 dB
// over the configured decay window.
func (p *Peak) Update(amplitude, decayWeight float64) {
	current := p.Load()
	if amplitude > current {
		p.Store(amplitude)
		return
	}
	p.Store(current*decayWeight + amplitude*(1.0-decayWeight))
}

// Reset drops the estimate back to silence.
func (p *Peak) Reset() {
	p.bits.Store(0)
}
