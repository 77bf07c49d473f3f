// SPDX-License-Identifier: MIT
package audio

import (
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"sidegain/internal/config"
	"sidegain/internal/dsp"
	applog "sidegain/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

// Engine owns the PortAudio duplex stream and hosts the Processor. The
// stream callback is the real-time path; everything else on the Engine runs
// on ordinary goroutines.
type Engine struct {
	config    *config.Config
	processor *Processor

	// Audio device handling.
	inputDevice   *portaudio.DeviceInfo
	outputDevice  *portaudio.DeviceInfo
	inputLatency  time.Duration
	outputLatency time.Duration
	stream        *portaudio.Stream

	// Side-chain staging buffer. Input channels beyond the main bus are
	// copied here so gain can be applied without mutating host memory.
	auxBus [][]float32

	// Whether a display consumer is currently attached. Read once per
	// callback; gates all metering work.
	displayActive atomic.Bool

	// Recording state for the processed output.
	isRecording int32 // Atomic flag for thread-safe state
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer // Reusable buffer for format conversion
}

// NewEngine resolves the configured devices, builds the processor, and
// applies the configured gain defaults. The stream is not started yet.
func NewEngine(cfg *config.Config) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.InputDeviceID)
	if err != nil {
		return nil, err
	}
	outputDevice, err := OutputDevice(cfg.OutputDeviceID)
	if err != nil {
		return nil, err
	}

	processor := NewProcessor()
	processor.Initialize(cfg.SampleRate, PeakMeterDecayMS)

	if err := processor.Gain().SetTarget(dsp.DbToGain(cfg.GainDB)); err != nil {
		return nil, err
	}
	if err := processor.SideChainGain().SetTarget(dsp.DbToGain(cfg.SideChainGainDB)); err != nil {
		return nil, err
	}

	// Pre-allocate the side-chain staging buffer.
	var auxBus [][]float32
	for c := 0; c < cfg.SideChainChannels; c++ {
		auxBus = append(auxBus, make([]float32, cfg.FramesPerBuffer))
	}

	e := &Engine{
		config:       cfg,
		processor:    processor,
		inputDevice:  inputDevice,
		outputDevice: outputDevice,
		auxBus:       auxBus,
	}

	if cfg.LowLatency {
		e.inputLatency = inputDevice.DefaultLowInputLatency
		e.outputLatency = outputDevice.DefaultLowOutputLatency
	} else {
		e.inputLatency = inputDevice.DefaultHighInputLatency
		e.outputLatency = outputDevice.DefaultHighOutputLatency
	}

	return e, nil
}

// Start opens and starts the duplex stream. The input side carries the main
// bus plus any side-chain channels; the output side carries the main bus.
func (e *Engine) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.config.Channels + e.config.SideChainChannels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: e.config.Channels,
			Device:   e.outputDevice,
			Latency:  e.outputLatency,
		},
		FramesPerBuffer: e.config.FramesPerBuffer,
		SampleRate:      e.config.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processStream)
	if err != nil {
		return err
	}
	e.stream = stream

	if err := e.stream.Start(); err != nil {
		e.stream.Close()
		e.stream = nil
		return err
	}

	applog.Infof("Engine: stream started (%.0f Hz, %d+%d in / %d out, %d frames)",
		e.config.SampleRate, e.config.Channels, e.config.SideChainChannels,
		e.config.Channels, e.config.FramesPerBuffer)
	return nil
}

// Stop stops and closes the stream.
func (e *Engine) Stop() error {
	if e.stream != nil {
		if err := e.stream.Stop(); err != nil {
			return err
		}
		if err := e.stream.Close(); err != nil {
			return err
		}
		e.stream = nil
	}
	return nil
}

// processStream is the core audio processing callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path
func (e *Engine) processStream(in, out [][]float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// Main bus: copy input to output, then process in place.
	mainChannels := e.config.Channels
	for c := 0; c < mainChannels && c < len(in) && c < len(out); c++ {
		copy(out[c], in[c])
	}

	// Side-chain bus: stage the extra input channels.
	for c := range e.auxBus {
		if mainChannels+c < len(in) {
			copy(e.auxBus[c], in[mainChannels+c])
		}
	}

	e.processor.Process(out, e.auxBus, e.displayActive.Load())

	// Capture the processed output if recording.
	if atomic.LoadInt32(&e.isRecording) == 1 && e.wavEncoder != nil {
		e.writeRecordingBlock(out)
	}
}

// SetDisplayActive flips the "someone is watching the meters" flag. Called
// by the display layer when it attaches or detaches.
func (e *Engine) SetDisplayActive(active bool) {
	e.displayActive.Store(active)
}

// DisplayActive reports whether a display consumer is attached.
func (e *Engine) DisplayActive() bool {
	return e.displayActive.Load()
}

// Processor exposes the hosted signal processor for controllers, displays,
// and persistence.
func (e *Engine) Processor() *Processor {
	return e.processor
}
