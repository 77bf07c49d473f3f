// SPDX-License-Identifier: MIT
package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for the gain stage.
const (
	// Default values for the engine configuration
	DefaultChannels          = 2           // Stereo main bus
	DefaultSideChainChannels = 2           // Stereo side-chain bus
	DefaultDeviceID          = MinDeviceID // Default to system default device
	DefaultFormat            = "wav"       // WAV file format for recordings
	DefaultFramesPerBuffer   = 512         // Balanced latency/performance
	DefaultLowLatency        = false       // Standard latency mode
	DefaultSampleRate        = 44100       // CD-quality audio
	DefaultGainDB            = 0.0         // Unity main gain
	DefaultSideChainGainDB   = 0.0         // Unity side-chain gain
	DefaultSessionFile       = ""          // No session persistence
	DefaultOutputFile        = ""          // Auto-generated filename
	DefaultCommand           = ""          // No command by default
	DefaultVerbosity         = false       // Quiet operation

	// Hardware and processing limits
	MinDeviceID     = -1     // -1 represents system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer (power of 2)

	// Transport defaults
	DefaultWSAddr           = "localhost:8080"      // WebSocket listen address
	DefaultUDPTargetAddress = "127.0.0.1:9090"      // UDP meter frame target
	DefaultPublishInterval  = 33 * time.Millisecond // ~30 Hz meter publishing
)

// Config holds all runtime configuration options for the gain stage.
// It is constructed from defaults, then a YAML file, then environment
// variables, then command line flags, in that order.
type Config struct {
	// Audio Device Settings
	Channels          int     `yaml:"channels"`            // Main bus channel count (2 = stereo)
	SideChainChannels int     `yaml:"side_chain_channels"` // Side-chain bus channel count (0 disables the bus)
	InputDeviceID     int     `yaml:"input_device"`        // Input device identifier (-1 for default)
	OutputDeviceID    int     `yaml:"output_device"`       // Output device identifier (-1 for default)
	SampleRate        float64 `yaml:"sample_rate"`         // Sample rate in Hz
	FramesPerBuffer   int     `yaml:"frames_per_buffer"`   // Buffer size in frames (power of 2)
	LowLatency        bool    `yaml:"low_latency"`         // Use low latency mode

	// Gain Defaults
	GainDB          float64 `yaml:"gain_db"`            // Main gain applied at startup, in dB
	SideChainGainDB float64 `yaml:"side_chain_gain_db"` // Side-chain gain applied at startup, in dB

	// Recording Options
	RecordOutputStream bool   `yaml:"record_output"` // Whether to record the processed output
	OutputFile         string `yaml:"output_file"`   // Output file path for recordings
	Format             string `yaml:"format"`        // Recording format (wav only for now)

	// Session Persistence
	SessionFile string `yaml:"session_file"` // Path for saving/restoring parameter state

	// Meter Transport Settings
	WSEnabled        bool          `yaml:"ws_enabled"`         // Serve meter frames over WebSocket
	WSAddr           string        `yaml:"ws_addr"`            // WebSocket listen address
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Send meter frames over UDP
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target address for UDP frames
	PublishInterval  time.Duration `yaml:"publish_interval"`   // Interval between published meter frames

	// Debug Options
	Verbose  bool   `yaml:"verbose"`           // Enable verbose logging
	LogLevel string `yaml:"log_level"`         // Logging level ("debug", "info", "warn", "error")
	Command  string `yaml:"command,omitempty"` // One-off command to execute
	TUIMode  bool   `yaml:"tui"`               // Terminal UI mode enabled
}

// NewConfig creates a new Config instance with default values.
// This is typically used as the base configuration before
// applying a config file, environment, or command line arguments.
func NewConfig() *Config {
	return &Config{
		Channels:           DefaultChannels,
		SideChainChannels:  DefaultSideChainChannels,
		InputDeviceID:      DefaultDeviceID,
		OutputDeviceID:     DefaultDeviceID,
		SampleRate:         DefaultSampleRate,
		FramesPerBuffer:    DefaultFramesPerBuffer,
		LowLatency:         DefaultLowLatency,
		GainDB:             DefaultGainDB,
		SideChainGainDB:    DefaultSideChainGainDB,
		RecordOutputStream: false,
		OutputFile:         DefaultOutputFile,
		Format:             DefaultFormat,
		SessionFile:        DefaultSessionFile,
		WSAddr:             DefaultWSAddr,
		UDPTargetAddress:   DefaultUDPTargetAddress,
		PublishInterval:    DefaultPublishInterval,
		LogLevel:           "info",
		Command:            DefaultCommand,
		Verbose:            DefaultVerbosity,
	}
}
