// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"
	"sync/atomic"

	applog "sidegain/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// recordBitDepth is the bit depth of captured WAV files. The stream runs in
// float32; samples are quantized on write.
const recordBitDepth = 16

// StartRecording begins capturing the processed output to a WAV file.
func (e *Engine) StartRecording(filename string) error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		return fmt.Errorf("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	e.outputFile = file

	e.wavEncoder = wav.NewEncoder(file, int(e.config.SampleRate),
		recordBitDepth, e.config.Channels, 1)

	e.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: e.config.Channels,
			SampleRate:  int(e.config.SampleRate),
		},
		SourceBitDepth: recordBitDepth,
		Data:           make([]int, e.config.FramesPerBuffer*e.config.Channels),
	}

	atomic.StoreInt32(&e.isRecording, 1)
	return nil
}

// StopRecording finalizes the WAV file and releases the encoder.
func (e *Engine) StopRecording() error {
	if atomic.LoadInt32(&e.isRecording) == 0 {
		return nil
	}

	atomic.StoreInt32(&e.isRecording, 0)

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return err
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			return err
		}
		e.outputFile = nil
	}

	return nil
}

// writeRecordingBlock interleaves and quantizes one processed block into the
// reusable sample buffer and hands it to the encoder. Called from the stream
// callback while recording is active.
func (e *Engine) writeRecordingBlock(out [][]float32) {
	if len(out) == 0 {
		return
	}

	frames := len(out[0])
	channels := len(out)
	const scale = 1 << (recordBitDepth - 1)

	n := 0
	for i := 0; i < frames; i++ {
		for c := 0; c < channels && n < len(e.sampleBuf.Data); c++ {
			e.sampleBuf.Data[n] = int(out[c][i] * (scale - 1))
			n++
		}
	}
	e.sampleBuf.Data = e.sampleBuf.Data[:n]

	if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
		applog.Errorf("Engine: error writing to WAV file: %v", err)
	}
}

// Close stops any active recording and shuts down the stream.
func (e *Engine) Close() error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		if err := e.StopRecording(); err != nil {
			return err
		}
	}
	return e.Stop()
}
