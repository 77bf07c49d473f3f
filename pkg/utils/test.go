// SPDX-License-Identifier: MIT

// Package utils provides test helpers shared across packages: a transport
// mock and deterministic signal generators.
package utils

import (
	"math"
	"sync"
)

// MockTransport implements the transport.Transport interface for testing.
// Sent payloads are recorded for later inspection.
type MockTransport struct {
	mu     sync.Mutex
	sent   []any
	closed bool

	// SendErr, when set, is returned from every Send call.
	SendErr error
}

// Send stores the payload for later inspection instead of transmitting.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.sent = append(m.sent, data)
	return nil
}

// Close marks the transport as closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Sent returns a copy of the recorded payloads.
func (m *MockTransport) Sent() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.sent))
	copy(out, m.sent)
	return out
}

// Closed reports whether Close has been called.
func (m *MockTransport) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GenerateSineWave fills a mono buffer with a sine at the given frequency,
// scaled to the given amplitude.
func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = float32(math.Sin(2*math.Pi*frequency*t) * amplitude)
	}
	return buffer
}

// GenerateComplexWave fills a mono buffer with a 440Hz fundamental plus two
// harmonics, useful when a test needs a signal with structure.
func GenerateComplexWave(size int, sampleRate float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2 // 440Hz fundamental + harmonics
		buffer[i] = float32(signal * 0.9)
	}
	return buffer
}

// GenerateStereoSine builds a two-channel block carrying the same sine on
// both channels.
func GenerateStereoSine(frames int, sampleRate, frequency, amplitude float64) [][]float32 {
	left := GenerateSineWave(frames, sampleRate, frequency, amplitude)
	right := make([]float32, frames)
	copy(right, left)
	return [][]float32{left, right}
}

// PeakAmplitude returns the largest absolute sample value in the block.
func PeakAmplitude(block [][]float32) float64 {
	peak := 0.0
	for _, ch := range block {
		for _, s := range ch {
			if v := math.Abs(float64(s)); v > peak {
				peak = v
			}
		}
	}
	return peak
}
