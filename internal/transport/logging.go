// SPDX-License-Identifier: MIT
package transport

import (
	applog "sidegain/internal/log"
)

// LoggingTransport implements the Transport interface by writing frames to
// the application log at debug level. Useful for headless runs and as a
// fallback when no network transport is configured.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Infof("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the frame at debug level. Logging transport never fails to "send".
func (lt *LoggingTransport) Send(data any) error {
	if frame, ok := data.(Frame); ok {
		applog.Debugf("Meters: seq=%d main=%.1f dBFS side=%.1f dBFS gain=%.1f dB",
			frame.Seq, frame.MainPeakDB, frame.SideChainPeakDB, frame.GainDB)
		return nil
	}
	applog.Debugf("Meters: %+v", data)
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
