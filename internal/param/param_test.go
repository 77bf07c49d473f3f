// SPDX-License-Identifier: MIT
package param

import (
	"errors"
	"math"
	"strings"
	"testing"

	"sidegain/internal/dsp"
)

func newGainParam() *Parameter {
	return New("gain", "Gain", GainRange(-30, 30), dsp.DbToGain(0)).
		WithUnit("dB").
		WithFormatter(GainToDbFormatter(2), GainToDbParser())
}

func TestSetTargetValidation(t *testing.T) {
	tests := []struct {
		desc    string
		value   float64
		wantErr bool
	}{
		{"Unity gain", 1.0, false},
		{"Range minimum", dsp.DbToGain(-30), false},
		{"Range maximum", dsp.DbToGain(30), false},
		{"Below range", dsp.DbToGain(-30) / 2, true},
		{"Above range", dsp.DbToGain(30) * 2, true},
		{"Zero", 0.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			p := newGainParam()
			err := p.SetTarget(tt.value)

			if tt.wantErr {
				if !errors.Is(err, ErrOutOfRange) {
					t.Errorf("SetTarget(%g): got %v, want ErrOutOfRange", tt.value, err)
				}
				if p.Target() != p.DefaultValue() {
					t.Errorf("rejected SetTarget changed target to %g", p.Target())
				}
			} else if err != nil {
				t.Errorf("SetTarget(%g): unexpected error %v", tt.value, err)
			}
		})
	}
}

func TestRejectedTargetLeavesTrajectoryAlone(t *testing.T) {
	p := newGainParam()
	p.SetSampleRate(44100)

	if err := p.SetTarget(2.0); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		p.Next()
	}
	before := p.Current()

	if err := p.SetTarget(1000.0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}

	// The in-flight trajectory keeps marching toward the accepted target.
	next := p.Next()
	if next <= before || next > 2.0 {
		t.Errorf("trajectory disturbed by rejected target: before=%v next=%v", before, next)
	}
}

func TestNextPicksUpControllerTarget(t *testing.T) {
	p := newGainParam()
	p.SetSampleRate(44100)

	if err := p.SetTarget(dsp.DbToGain(6)); err != nil {
		t.Fatal(err)
	}

	steps := int(math.Round(44100 * DefaultSmoothingMS / 1000.0))
	var last float64
	for i := 0; i < steps; i++ {
		last = p.Next()
	}
	if want := dsp.DbToGain(6); math.Abs(last-want) > 1e-9 {
		t.Errorf("converged to %.9f, want %.9f", last, want)
	}
}

func TestFormatterRoundTrip(t *testing.T) {
	// string_to_value(value_to_string(v)) recovers v within the two decimal
	// places the display carries.
	p := newGainParam()

	for db := -30.0; db <= 30.0; db += 1.37 {
		v := dsp.DbToGain(db)
		s := p.Format(v)
		back, err := p.Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if gotDB := dsp.GainToDb(back); math.Abs(gotDB-db) > 0.005 {
			t.Errorf("round trip %.3f dB -> %q -> %.3f dB", db, s, gotDB)
		}
	}
}

func TestParseFailureKeepsValue(t *testing.T) {
	tests := []string{"", "loud", "12..0 dB", "dB"}

	p := newGainParam()
	prev := p.Target()

	for _, s := range tests {
		if err := p.SetTargetFromString(s); err == nil {
			t.Errorf("SetTargetFromString(%q): expected error", s)
		}
		if p.Target() != prev {
			t.Errorf("SetTargetFromString(%q) changed target", s)
		}
	}
}

func TestGainFormatterFloor(t *testing.T) {
	f := GainToDbFormatter(2)
	if got := f(0); got != "-inf dB" {
		t.Errorf("format silence: got %q, want \"-inf dB\"", got)
	}

	parse := GainToDbParser()
	v, err := parse("-inf dB")
	if err != nil || v != 0 {
		t.Errorf("parse -inf: got (%v, %v), want (0, nil)", v, err)
	}
}

func TestGainSkewMidpoint(t *testing.T) {
	// The decibel midpoint of the range must land at normalized 0.5.
	r := GainRange(-30, 30)
	if n := r.Normalize(dsp.DbToGain(0)); math.Abs(n-0.5) > 1e-9 {
		t.Errorf("Normalize(0 dB) = %.9f, want 0.5", n)
	}

	// Normalize and Denormalize are inverses across the range.
	for _, db := range []float64{-30, -12.5, 0, 7.3, 30} {
		v := dsp.DbToGain(db)
		if got := r.Denormalize(r.Normalize(v)); math.Abs(got-v) > 1e-9 {
			t.Errorf("denorm(norm(%.4f)) = %.9f", v, got)
		}
	}
}

func TestIntParameter(t *testing.T) {
	p := New("depth", "Depth", IntRange{MinValue: 0, MaxValue: 3}, 3).
		WithFormatter(IntFormatter(), IntParser())

	if err := p.SetTarget(2); err != nil {
		t.Fatalf("SetTarget(2): %v", err)
	}
	if err := p.SetTarget(4); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetTarget(4): got %v, want ErrOutOfRange", err)
	}

	if s := p.Format(2); s != "2" {
		t.Errorf("Format(2) = %q, want \"2\"", s)
	}
	if v, err := p.Parse("1"); err != nil || v != 1 {
		t.Errorf("Parse(\"1\") = (%v, %v)", v, err)
	}
}

func TestRegistryOrderAndLookup(t *testing.T) {
	r := NewRegistry()
	gain := newGainParam()
	side := New("side_chain_gain", "Side Chain Gain", GainRange(-30, 30), 1.0)
	r.Add(gain, side)
	r.Add(gain) // Duplicate, skipped

	if r.Count() != 2 {
		t.Fatalf("Count = %d, want 2", r.Count())
	}
	if r.Get("gain") != gain || r.Get("side_chain_gain") != side {
		t.Error("Get returned wrong parameter")
	}
	if r.Get("missing") != nil {
		t.Error("Get(missing) should be nil")
	}

	all := r.All()
	if all[0].ID() != "gain" || all[1].ID() != "side_chain_gain" {
		ids := make([]string, len(all))
		for i, p := range all {
			ids[i] = p.ID()
		}
		t.Errorf("declaration order lost: %s", strings.Join(ids, ","))
	}
}

func TestDefaultFormatFallback(t *testing.T) {
	p := New("mix", "Mix", LinearRange{MinValue: 0, MaxValue: 1}, 0.5).WithUnit("%")
	if got := p.Format(0.25); got != "0.25 %" {
		t.Errorf("Format fallback = %q", got)
	}
	if v, err := p.Parse("0.75"); err != nil || v != 0.75 {
		t.Errorf("Parse fallback = (%v, %v)", v, err)
	}
}

func BenchmarkParameterNext(b *testing.B) {
	p := newGainParam()
	p.SetSampleRate(44100)
	_ = p.SetTarget(dsp.DbToGain(-6))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.Next()
	}
}

func BenchmarkSetTargetConcurrentNext(b *testing.B) {
	// Controller-side writes race benignly with audio-side reads; neither
	// path may allocate or block.
	p := newGainParam()
	p.SetSampleRate(44100)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				_ = p.Next()
			}
		}
	}()

	targets := []float64{0.5, 1.0, 2.0}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.SetTarget(targets[i%len(targets)])
	}
	close(done)
}
