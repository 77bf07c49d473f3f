// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"sidegain/pkg/bitint"
)

// LoadConfig loads configuration from a YAML file specified by path. If path is
// empty, it searches default locations ("config.yaml"). If no file is found, it
// uses built-in defaults. After loading defaults or from file, it applies
// environment variable overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{
			"config.yaml",
		}
		found := false
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				found = true
				break
			}
		}
		if !found {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration against the engine's hardware and
// processing limits.
func (c *Config) Validate() error {
	if c.Channels < 1 {
		return fmt.Errorf("channels must be at least 1, got %d", c.Channels)
	}
	if c.SideChainChannels < 0 {
		return fmt.Errorf("side_chain_channels cannot be negative, got %d", c.SideChainChannels)
	}
	if c.SampleRate < MinSampleRate || c.SampleRate > MaxSampleRate {
		return fmt.Errorf("sample_rate %g outside supported range [%d, %d]",
			c.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.FramesPerBuffer < 1 || c.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("frames_per_buffer %d outside supported range [1, %d]",
			c.FramesPerBuffer, MaxBufferFrames)
	}
	if !bitint.IsPowerOfTwo(c.FramesPerBuffer) {
		return fmt.Errorf("frames_per_buffer must be a power of two, got %d", c.FramesPerBuffer)
	}
	if c.Format != "wav" {
		return fmt.Errorf("unsupported recording format: %q", c.Format)
	}

	if c.WSEnabled && c.WSAddr == "" {
		return fmt.Errorf("ws_addr must be set when WebSocket transport is enabled")
	}
	if c.UDPEnabled && c.UDPTargetAddress == "" {
		return fmt.Errorf("udp_target_address must be set when UDP transport is enabled")
	}
	if (c.WSEnabled || c.UDPEnabled) && c.PublishInterval <= 0 {
		return fmt.Errorf("publish_interval must be positive when a transport is enabled")
	}

	return nil
}

// applyEnvOverrides layers environment variables over the current values.
// Unparseable values are ignored rather than treated as errors.
func (cfg *Config) applyEnvOverrides() {
	// ENV_{...}
	// These are general overrides.

	if val, ok := os.LookupEnv("ENV_VERBOSE"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Verbose = bVal
		}
	}
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}
	if val, ok := os.LookupEnv("ENV_GAIN_DB"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.GainDB = fVal
		}
	}
	if val, ok := os.LookupEnv("ENV_SIDE_CHAIN_GAIN_DB"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.SideChainGainDB = fVal
		}
	}

	// ENV_WS_{...} / ENV_UDP_{...}
	// These are specific to the transport layer.

	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.WSEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("ENV_WS_ADDR"); ok {
		cfg.WSAddr = val
	}
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.UDPEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.UDPTargetAddress = val
	}
	if val, ok := os.LookupEnv("ENV_PUBLISH_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.PublishInterval = dur
		}
	}
}
