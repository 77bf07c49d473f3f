// SPDX-License-Identifier: MIT
package meter

import (
	"math"
	"testing"
)

// decayWeight computes the per-sample decay factor used by the processor:
// repeated application over windowMS of silence reduces the estimate by a
// factor of 4 (about 12 dB).
func decayWeight(sampleRate, windowMS float64) float64 {
	return math.Pow(0.25, 1.0/(sampleRate*windowMS/1000.0))
}

func TestPeakInstantAttack(t *testing.T) {
	tests := []struct {
		desc      string
		current   float64
		amplitude float64
	}{
		{"From silence", 0.0, 0.8},
		{"Above current", 0.3, 0.9},
		{"Tiny rise", 0.5, 0.5000001},
	}

	w := decayWeight(44100, 150)
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			p := NewPeak()
			p.Store(tt.current)
			p.Update(tt.amplitude, w)

			// Attack must be exact, not smoothed.
			if got := p.Load(); got != tt.amplitude {
				t.Errorf("Update attack: got %v, want exactly %v", got, tt.amplitude)
			}
		})
	}
}

func TestPeakDecayLaw(t *testing.T) {
	// After a full decay window of pure silence the estimate must have
	// fallen by 12 dB, i.e. to a quarter of its starting value.
	sampleRates := []float64{44100, 48000, 96000}
	const windowMS = 150.0

	for _, sr := range sampleRates {
		w := decayWeight(sr, windowMS)
		n := int(sr * windowMS / 1000.0)

		p := NewPeak()
		p.Store(1.0)
		for i := 0; i < n; i++ {
			p.Update(0.0, w)
		}

		if got := p.Load(); math.Abs(got-0.25) > 1e-9 {
			t.Errorf("sr=%.0f: after %d silent updates got %.9f, want 0.25", sr, n, got)
		}
	}
}

func TestPeakSilenceScenario(t *testing.T) {
	// Spec scenario: 44100 Hz, 150 ms window, current peak 1.0 linear,
	// 150 ms of silence lands at about -12 dB from the start.
	const sr = 44100.0
	w := decayWeight(sr, 150)

	p := NewPeak()
	p.Store(1.0)
	for i := 0; i < int(sr*0.150); i++ {
		p.Update(0.0, w)
	}

	db := 20 * math.Log10(p.Load())
	if math.Abs(db-(-12.04)) > 0.05 {
		t.Errorf("peak after 150ms silence = %.2f dB, want about -12 dB", db)
	}
}

func TestPeakNeverNegative(t *testing.T) {
	w := decayWeight(48000, 150)
	p := NewPeak()

	if p.Load() < 0 {
		t.Fatal("fresh meter must not be negative")
	}

	amplitudes := []float64{0.9, 0.0, 0.0, 0.4, 0.0, 1.2, 0.0}
	for _, a := range amplitudes {
		p.Update(a, w)
		if got := p.Load(); got < 0 {
			t.Fatalf("Load returned negative value %v after Update(%v)", got, a)
		}
	}
}

func TestPeakReset(t *testing.T) {
	p := NewPeak()
	p.Store(0.75)
	p.Reset()
	if got := p.Load(); got != 0 {
		t.Errorf("Reset: got %v, want 0", got)
	}
}

func TestPeakHotPathAllocs(t *testing.T) {
	p := NewPeak()
	w := decayWeight(44100, 150)

	allocs := testing.AllocsPerRun(100, func() {
		p.Update(0.5, w)
		_ = p.Load()
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in meter update, got %.1f", allocs)
	}
}

func BenchmarkPeakUpdate(b *testing.B) {
	p := NewPeak()
	w := decayWeight(44100, 150)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Update(0.3, w)
	}
}
