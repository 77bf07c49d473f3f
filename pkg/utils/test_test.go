// SPDX-License-Identifier: MIT
package utils

import (
	"errors"
	"math"
	"testing"
)

const (
	testSize       = 1024
	testSampleRate = 44100
	testFrequency  = 440.0 // A4 note
)

func TestMockTransport(t *testing.T) {
	tests := []struct {
		name     string
		payloads []any
	}{
		{"No payloads", nil},
		{"Single payload", []any{"one"}},
		{"Multiple payloads", []any{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mt := &MockTransport{}

			for _, p := range tt.payloads {
				if err := mt.Send(p); err != nil {
					t.Errorf("MockTransport.Send() error = %v", err)
				}
			}

			if got := mt.Sent(); len(got) != len(tt.payloads) {
				t.Errorf("MockTransport recorded %d payloads, want %d",
					len(got), len(tt.payloads))
			}

			if mt.Closed() {
				t.Error("MockTransport reports closed before Close")
			}
			if err := mt.Close(); err != nil {
				t.Errorf("MockTransport.Close() error = %v", err)
			}
			if !mt.Closed() {
				t.Error("MockTransport should report closed after Close")
			}
		})
	}
}

func TestMockTransportSendErr(t *testing.T) {
	wantErr := errors.New("transport down")
	mt := &MockTransport{SendErr: wantErr}

	if err := mt.Send("payload"); !errors.Is(err, wantErr) {
		t.Errorf("Send error = %v, want %v", err, wantErr)
	}
	if got := mt.Sent(); len(got) != 0 {
		t.Errorf("failed send was recorded: %v", got)
	}
}

func TestGenerateComplexWave(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		sampleRate float64
	}{
		{"Standard", 1024, 44100},
		{"Small", 16, 8000},
		{"Large", 8192, 96000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateComplexWave(tt.size, tt.sampleRate)

			if len(result) != tt.size {
				t.Errorf("GenerateComplexWave() buffer size = %d, want %d",
					len(result), tt.size)
			}

			// Check non-zero values (signal should have content).
			hasNonZero := false
			for _, v := range result {
				if v != 0 {
					hasNonZero = true
					break
				}
			}

			if !hasNonZero {
				t.Errorf("GenerateComplexWave() produced all zeros")
			}
		})
	}
}

func TestGenerateSineWave(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		sampleRate float64
		frequency  float64
	}{
		{"A4 Note", 1024, 44100, 440.0},
		{"Middle C", 1024, 44100, 261.63},
		{"High Sample Rate", 1024, 192000, 440.0},
		{"Low Sample Rate", 1024, 8000, 440.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateSineWave(tt.size, tt.sampleRate, tt.frequency, 0.9)

			if len(result) != tt.size {
				t.Errorf("GenerateSineWave() buffer size = %d, want %d",
					len(result), tt.size)
			}

			// For a sine wave, we expect samplesPerCycle = sampleRate / frequency.
			// We'll verify that the values "cross zero" at approximately the right intervals.
			samplesPerCycle := tt.sampleRate / tt.frequency

			// Check for zero crossings.
			if samplesPerCycle > 2 && float64(tt.size) > samplesPerCycle {
				crossCount := 0
				for i := 1; i < tt.size; i++ {
					if (result[i-1] < 0 && result[i] >= 0) ||
						(result[i-1] >= 0 && result[i] < 0) {
						crossCount++
					}
				}

				// Rough approximation of expected crossings (2 per cycle).
				expectedCrossings := float64(tt.size) / (samplesPerCycle / 2)
				// Allow 20% margin of error due to phase alignment and sampling.
				tolerance := 0.2 * expectedCrossings

				if math.Abs(float64(crossCount)-expectedCrossings) > tolerance {
					t.Errorf("GenerateSineWave() zero crossings = %d, expected approximately %.1f±%.1f",
						crossCount, expectedCrossings, tolerance)
				}
			}
		})
	}
}

func TestGenerateSineWaveAmplitude(t *testing.T) {
	result := GenerateSineWave(testSize, testSampleRate, testFrequency, 0.5)
	for i, v := range result {
		if math.Abs(float64(v)) > 0.5+1e-6 {
			t.Fatalf("sample %d = %v exceeds requested amplitude 0.5", i, v)
		}
	}
}

func TestGenerateStereoSine(t *testing.T) {
	block := GenerateStereoSine(256, testSampleRate, testFrequency, 0.9)
	if len(block) != 2 {
		t.Fatalf("channels = %d, want 2", len(block))
	}
	for i := range block[0] {
		if block[0][i] != block[1][i] {
			t.Fatalf("channels diverge at sample %d", i)
		}
	}
}

func TestPeakAmplitude(t *testing.T) {
	tests := []struct {
		name  string
		block [][]float32
		want  float64
	}{
		{"Empty", nil, 0},
		{"Positive peak", [][]float32{{0.1, 0.7, 0.2}}, 0.7},
		{"Negative peak", [][]float32{{0.1, -0.9, 0.2}}, 0.9},
		{"Peak on second channel", [][]float32{{0.1}, {-0.4}}, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeakAmplitude(tt.block); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("PeakAmplitude() = %v, want %v", got, tt.want)
			}
		})
	}

	allocs := testing.AllocsPerRun(100, func() {
		PeakAmplitude([][]float32{{0.1, 0.2}, {0.3, 0.4}})
	})
	if allocs > 0 {
		t.Errorf("PeakAmplitude allocated memory: got %.1f allocs, want 0", allocs)
	}
}

func BenchmarkGenerateComplexWave(b *testing.B) {
	benchmarks := []struct {
		name string
		size int
	}{
		{"Small", 64},
		{"Standard", 1024},
		{"Large", 8192},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				GenerateComplexWave(bm.size, testSampleRate)
			}
		})
	}
}

func BenchmarkGenerateSineWave(b *testing.B) {
	benchmarks := []struct {
		name string
		size int
	}{
		{"Small", 64},
		{"Standard", 1024},
		{"Large", 8192},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				GenerateSineWave(bm.size, testSampleRate, testFrequency, 0.9)
			}
		})
	}
}
