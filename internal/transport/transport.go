// SPDX-License-Identifier: MIT

// Package transport publishes meter frames to external consumers. A frame is
// a point-in-time snapshot of the peak meters and gain settings; transports
// fan frames out over WebSocket, UDP, or the log.
package transport

import (
	"time"

	"sidegain/internal/audio"
	"sidegain/internal/dsp"
)

// Transport defines a generic interface for sending meter frames.
// Implementations should be thread-safe.
type Transport interface {
	Send(data any) error
	Close() error
}

// MeterProvider is the slice of the engine the publisher needs: access to
// the processor's meters and the switch that tells the real-time path
// someone is watching.
type MeterProvider interface {
	Processor() *audio.Processor
	SetDisplayActive(active bool)
}

// Frame is one published meter snapshot. Peak and gain values are in dBFS
// and dB respectively, with dsp.MinusInfinityDB as the silence floor.
type Frame struct {
	Seq             uint32  `json:"seq"`
	TimestampNS     int64   `json:"timestamp_ns"`
	MainPeakDB      float64 `json:"main_peak_db"`
	SideChainPeakDB float64 `json:"side_chain_peak_db"`
	GainDB          float64 `json:"gain_db"`
	SideChainGainDB float64 `json:"side_chain_gain_db"`
}

// BuildFrame snapshots the processor's meters and smoothed gain values.
func BuildFrame(p *audio.Processor, seq uint32, now time.Time) Frame {
	return Frame{
		Seq:             seq,
		TimestampNS:     now.UnixNano(),
		MainPeakDB:      dsp.GainToDb(p.MainPeak().Load()),
		SideChainPeakDB: dsp.GainToDb(p.SideChainPeak().Load()),
		GainDB:          dsp.GainToDb(p.Gain().Current()),
		SideChainGainDB: dsp.GainToDb(p.SideChainGain().Current()),
	}
}
