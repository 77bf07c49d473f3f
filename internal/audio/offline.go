// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"math"
	"os"

	"sidegain/internal/dsp"
	applog "sidegain/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"gonum.org/v1/gonum/floats"
)

// RenderOptions controls an offline render pass.
type RenderOptions struct {
	GainDB      float64
	BlockFrames int
}

// RenderSummary reports what an offline render produced.
type RenderSummary struct {
	Frames     int
	Channels   int
	SampleRate int
	PeakDB     float64
	RMSDB      float64
}

// RenderFile runs a WAV file through the gain stage and writes the processed
// result to outPath. The input file has no side-chain bus; only the main gain
// path applies. Returns peak and RMS statistics of the processed output.
func RenderFile(inPath, outPath string, opts RenderOptions) (*RenderSummary, error) {
	if opts.BlockFrames <= 0 {
		opts.BlockFrames = 512
	}

	inFile, err := os.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer inFile.Close()

	decoder := wav.NewDecoder(inFile)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid WAV file", inPath)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", inPath, err)
	}

	channels := pcm.Format.NumChannels
	sampleRate := pcm.Format.SampleRate
	frames := len(pcm.Data) / channels
	bitDepth := int(decoder.BitDepth)
	scale := float64(int(1) << (bitDepth - 1))

	processor := NewProcessor()
	processor.Initialize(float64(sampleRate), PeakMeterDecayMS)
	gain := dsp.DbToGain(opts.GainDB)
	if err := processor.Gain().SetTarget(gain); err != nil {
		return nil, err
	}
	// Offline output should carry the settled gain from the first frame.
	processor.Gain().ResetSmoothing()

	outFile, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	encoder := wav.NewEncoder(outFile, sampleRate, bitDepth, channels, 1)

	block := make([][]float32, channels)
	for c := range block {
		block[c] = make([]float32, opts.BlockFrames)
	}
	flat := make([]float64, opts.BlockFrames*channels)
	outBuf := &audio.IntBuffer{
		Format:         pcm.Format,
		SourceBitDepth: bitDepth,
		Data:           make([]int, opts.BlockFrames*channels),
	}

	var peak, sumSquares float64
	total := 0

	for start := 0; start < frames; start += opts.BlockFrames {
		n := opts.BlockFrames
		if start+n > frames {
			n = frames - start
		}

		// De-interleave and normalize to float32.
		for i := 0; i < n; i++ {
			for c := 0; c < channels; c++ {
				block[c][i] = float32(float64(pcm.Data[(start+i)*channels+c]) / scale)
			}
		}
		for c := range block {
			block[c] = block[c][:n]
		}

		processor.Process(block, nil, false)

		// Accumulate statistics and re-interleave for the encoder.
		samples := flat[:n*channels]
		for i := 0; i < n; i++ {
			for c := 0; c < channels; c++ {
				v := float64(block[c][i])
				samples[i*channels+c] = math.Abs(v)
				outBuf.Data[i*channels+c] = int(v * (scale - 1))
			}
		}
		if len(samples) > 0 {
			if m := floats.Max(samples); m > peak {
				peak = m
			}
			sumSquares += floats.Dot(samples, samples)
		}

		outBuf.Data = outBuf.Data[:n*channels]
		if err := encoder.Write(outBuf); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
		outBuf.Data = outBuf.Data[:cap(outBuf.Data)]
		for c := range block {
			block[c] = block[c][:cap(block[c])]
		}
		total += n
	}

	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize output: %w", err)
	}

	rms := 0.0
	if total > 0 {
		rms = math.Sqrt(sumSquares / float64(total*channels))
	}

	summary := &RenderSummary{
		Frames:     total,
		Channels:   channels,
		SampleRate: sampleRate,
		PeakDB:     dsp.GainToDb(peak),
		RMSDB:      dsp.GainToDb(rms),
	}

	applog.Infof("Render: %d frames, %d ch, peak %.2f dBFS, RMS %.2f dBFS",
		summary.Frames, summary.Channels, summary.PeakDB, summary.RMSDB)
	return summary, nil
}
