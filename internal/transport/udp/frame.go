// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"sidegain/internal/transport"
)

/*
UDP Frame Structure (BigEndian)

+------------------------------------------------------------------------------+
| Field               | Data Type | Size (Bytes) | Description                 |
|---------------------|-----------|--------------|-----------------------------|
| Sequence Number     | uint32    | 4            | Monotonically increasing    |
| Timestamp           | int64     | 8            | Nanoseconds since epoch     |
| Main Peak           | float32   | 4            | dBFS, -100 floor            |
| Side-Chain Peak     | float32   | 4            | dBFS, -100 floor            |
| Gain                | float32   | 4            | dB, smoothed current value  |
| Side-Chain Gain     | float32   | 4            | dB, smoothed current value  |
+------------------------------------------------------------------------------+
*/

// FrameTransport packs meter frames into the binary wire format above and
// sends them through a UDPSender. It adapts the byte-oriented sender to the
// frame-oriented Transport interface.
type FrameTransport struct {
	sender *UDPSender

	// Reusable buffer for constructing the binary packet. Guarded by mu so
	// Send is safe for concurrent use.
	mu           sync.Mutex
	packetBuffer *bytes.Buffer
}

// NewFrameTransport wraps an existing UDPSender.
func NewFrameTransport(sender *UDPSender) (*FrameTransport, error) {
	if sender == nil {
		return nil, fmt.Errorf("FrameTransport: UDP sender cannot be nil")
	}
	return &FrameTransport{
		sender:       sender,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// NewFrameTransportAddr dials targetAddress and wraps the resulting sender.
func NewFrameTransportAddr(targetAddress string) (*FrameTransport, error) {
	sender, err := NewUDPSender(targetAddress)
	if err != nil {
		return nil, err
	}
	return NewFrameTransport(sender)
}

// Send packs the frame and transmits it as a single UDP packet.
func (t *FrameTransport) Send(data any) error {
	frame, ok := data.(transport.Frame)
	if !ok {
		return fmt.Errorf("FrameTransport: unsupported payload type %T", data)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.packetBuffer.Reset()
	if err := t.packFrame(frame); err != nil {
		return fmt.Errorf("FrameTransport: error packing frame: %w", err)
	}
	return t.sender.Send(t.packetBuffer.Bytes())
}

// packFrame writes the binary representation of frame into packetBuffer.
func (t *FrameTransport) packFrame(frame transport.Frame) error {
	timestamp := frame.TimestampNS
	if timestamp == 0 {
		timestamp = time.Now().UnixNano()
	}

	fields := []any{
		frame.Seq,
		timestamp,
		float32(frame.MainPeakDB),
		float32(frame.SideChainPeakDB),
		float32(frame.GainDB),
		float32(frame.SideChainGainDB),
	}
	for _, field := range fields {
		if err := binary.Write(t.packetBuffer, binary.BigEndian, field); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying sender.
func (t *FrameTransport) Close() error {
	return t.sender.Close()
}

// Ensure FrameTransport satisfies the Transport interface at compile time.
var _ transport.Transport = (*FrameTransport)(nil)
