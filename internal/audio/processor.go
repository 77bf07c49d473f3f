// SPDX-License-Identifier: MIT
/*
Package audio implements the real-time signal path of the gain stage:
- Stereo gain with click-free logarithmic parameter smoothing
- An auxiliary (side-chain) gain path processed in parallel
- Decaying peak meters shared lock-free with display consumers
- PortAudio host integration and WAV capture of the processed output

Thread Safety:
- Process runs on the host's audio callback and never locks or allocates
- Meters are single-writer atomic cells; readers poll on their own schedule
- Parameter targets arrive from controller threads through atomic slots
*/
package audio

import (
	"math"

	"sidegain/internal/dsp"
	"sidegain/internal/meter"
	"sidegain/internal/param"
)

// Stable parameter identifiers, persisted with session state.
const (
	ParamGain          = "gain"
	ParamSideChainGain = "side_chain_gain"
	ParamMeterDepth    = "meter_depth"
)

// PeakMeterDecayMS is the time it takes a meter to fall by 12 dB after the
// input switches to complete silence.
const PeakMeterDecayMS = 150.0

// Status reports the outcome of one Process call to the host.
type Status int

const (
	// StatusNormal means processing completed and the host should keep
	// calling. Gain application itself has no failure modes; out-of-range
	// floating point results pass through unclamped.
	StatusNormal Status = iota
	// StatusError is reserved for host-level faults outside the signal path.
	StatusError
)

// Processor applies the smoothed gain stage to audio blocks and drives the
// peak meters. One instance is owned by exactly one host callback.
type Processor struct {
	params    *param.Registry
	paramList []*param.Parameter // Fixed at construction; lets Reset avoid allocating
	gain      *param.Parameter
	sideGain  *param.Parameter

	mainPeak *meter.Peak
	sidePeak *meter.Peak

	sampleRate  float64
	decayWeight float64
}

// NewProcessor builds the processor with its stock parameter set: main and
// side-chain gain over a skewed -30..+30 dB range with 50 ms logarithmic
// smoothing, plus the integer meter-depth control.
func NewProcessor() *Processor {
	p := &Processor{
		params:   param.NewRegistry(),
		mainPeak: meter.NewPeak(),
		sidePeak: meter.NewPeak(),
	}

	p.gain = param.New(ParamGain, "Gain", param.GainRange(-30, 30), dsp.DbToGain(0)).
		WithUnit("dB").
		WithSmoothing(param.DefaultSmoothingMS).
		WithFormatter(param.GainToDbFormatter(2), param.GainToDbParser())

	p.sideGain = param.New(ParamSideChainGain, "Side Chain Gain", param.GainRange(-30, 30), dsp.DbToGain(0)).
		WithUnit("dB").
		WithSmoothing(param.DefaultSmoothingMS).
		WithFormatter(param.GainToDbFormatter(2), param.GainToDbParser())

	meterDepth := param.New(ParamMeterDepth, "Meter Depth", param.IntRange{MinValue: 0, MaxValue: 3}, 3).
		WithFormatter(param.IntFormatter(), param.IntParser())

	p.params.Add(p.gain, p.sideGain, meterDepth)
	p.paramList = p.params.All()
	return p
}

// Initialize fixes the sample-rate-derived constants. decayWindowMS selects
// how long a meter takes to fall 12 dB in silence; pass PeakMeterDecayMS for
// the stock behavior. Must be called again whenever the host changes rate.
func (p *Processor) Initialize(sampleRate, decayWindowMS float64) {
	p.sampleRate = sampleRate
	p.decayWeight = DecayWeight(sampleRate, decayWindowMS)
	p.params.SetSampleRate(sampleRate)
}

// DecayWeight returns the per-sample meter decay factor for the given rate:
// repeated application across the decay window multiplies the level by 0.25,
// a 12 dB drop.
func DecayWeight(sampleRate, decayWindowMS float64) float64 {
	return math.Pow(0.25, 1.0/(sampleRate*decayWindowMS/1000.0))
}

// Process runs one audio block in place. main holds the principal bus as one
// slice per channel; aux, when non-empty, holds the side-chain bus. Each bus
// gets its own smoothed gain and feeds its own peak meter. meteringActive is
// the host-supplied "is anything watching" flag; when false the metering
// work is skipped entirely and the meters hold their last value.
func (p *Processor) Process(main, aux [][]float32, meteringActive bool) Status {
	p.processBus(main, p.gain, p.mainPeak, meteringActive)
	p.processBus(aux, p.sideGain, p.sidePeak, meteringActive)
	return StatusNormal
}

// processBus applies one parameter's smoothed gain to every frame of one bus
// and, when metering, feeds the frame's mean post-gain amplitude to pk.
func (p *Processor) processBus(bufs [][]float32, prm *param.Parameter, pk *meter.Peak, metering bool) {
	if len(bufs) == 0 || len(bufs[0]) == 0 {
		return
	}

	frames := len(bufs[0])
	channels := len(bufs)
	invChannels := 1.0 / float32(channels)

	for i := 0; i < frames; i++ {
		gain := float32(prm.Next())

		var amplitude float32
		for c := 0; c < channels; c++ {
			s := bufs[c][i] * gain
			bufs[c][i] = s
			amplitude += s
		}

		if metering {
			a := amplitude * invChannels
			if a < 0 {
				a = -a
			}
			pk.Update(float64(a), p.decayWeight)
		}
	}
}

// Reset clears transient processing state. Smoothing trajectories pin to
// their current targets; meters are left alone, they decay on their own.
// Allocation-free and safe from the real-time path.
func (p *Processor) Reset() {
	for _, prm := range p.paramList {
		prm.ResetSmoothing()
	}
}

// Params exposes the parameter set for controllers and persistence.
func (p *Processor) Params() *param.Registry { return p.params }

// Gain is the main bus gain parameter.
func (p *Processor) Gain() *param.Parameter { return p.gain }

// SideChainGain is the auxiliary bus gain parameter.
func (p *Processor) SideChainGain() *param.Parameter { return p.sideGain }

// MainPeak is the meter fed by the principal bus.
func (p *Processor) MainPeak() *meter.Peak { return p.mainPeak }

// SideChainPeak is the meter fed by the auxiliary bus.
func (p *Processor) SideChainPeak() *meter.Peak { return p.sidePeak }

// SampleRate reports the rate passed to Initialize, 0 before that.
func (p *Processor) SampleRate() float64 { return p.sampleRate }
