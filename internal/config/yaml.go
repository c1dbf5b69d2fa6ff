// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"scope/internal/dso"
	"scope/internal/log"
	"scope/pkg/bitint"
)

// Config represents the main application configuration, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Enable debug mode (verbose logging).
	LogLevel  string          `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn").
	Acquire   AcquireConfig   `yaml:"acquire"`   // Acquisition settings.
	Scope     ScopeConfig     `yaml:"scope"`     // Channel and math-channel settings.
	Spectrum  SpectrumConfig  `yaml:"spectrum"`  // Spectrum analysis settings.
	Transport TransportConfig `yaml:"transport"` // Snapshot transport settings.

	// AnalyzeFile and Command are populated by the CLI, not by YAML.
	AnalyzeFile string `yaml:"-"`
	Command     string `yaml:"-"`
}

// AcquireConfig holds settings for the layer feeding raw records into
// the pipeline.
type AcquireConfig struct {
	InputDevice      int     `yaml:"input_device"`      // PortAudio device index (-1 for default).
	SampleRate       float64 `yaml:"sample_rate"`       // Sample rate in Hz.
	RecordLength     int     `yaml:"record_length"`     // Samples per channel per cycle (power of two).
	PhysicalChannels int     `yaml:"physical_channels"` // Hardware channels captured per cycle.
	LowLatency       bool    `yaml:"low_latency"`       // Request low latency from the capture device.
}

// ChannelConfig enables a channel for the voltage and/or spectrum display.
type ChannelConfig struct {
	Voltage  bool `yaml:"voltage"`
	Spectrum bool `yaml:"spectrum"`
}

// ScopeConfig holds channel enablement and math-channel settings.
type ScopeConfig struct {
	MathChannels int             `yaml:"math_channels"` // Derived channels appended after the physical ones.
	MathMode     string          `yaml:"math_mode"`     // One of "add", "ch1-ch2", "ch2-ch1".
	Channels     []ChannelConfig `yaml:"channels"`      // Use flags indexed by channel id.
}

// SpectrumConfig holds the window selector and dB calibration values.
type SpectrumConfig struct {
	Window    string  `yaml:"window"`       // Window function name (e.g., "hann", "blackman").
	Reference float64 `yaml:"reference_db"` // Spectrum reference level (dB).
	Limit     float64 `yaml:"limit_db"`     // Lower display limit (dB).
}

// TransportConfig holds settings for publishing snapshots to consumers.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"` // Broadcast cycle snapshots over WebSocket.
	WebSocketAddress string `yaml:"websocket_address"` // Listen address (e.g., ":8080").
}

// Load loads configuration from a YAML file at path. If path is empty it
// searches default locations ("scope.yaml", "config.yaml") and falls back
// to built-in defaults when no file exists. Environment overrides apply
// after loading, then the result is validated.
func Load(path string) (*Config, error) {
	cfg := Config{
		Debug:    false,
		LogLevel: DefaultLogLevel,
		Acquire: AcquireConfig{
			InputDevice:      DefaultDeviceID,
			SampleRate:       DefaultSampleRate,
			RecordLength:     DefaultRecordLength,
			PhysicalChannels: DefaultPhysicalChannels,
		},
		Scope: ScopeConfig{
			MathChannels: DefaultMathChannels,
			MathMode:     DefaultMathMode,
			Channels: []ChannelConfig{
				{Voltage: true, Spectrum: true},
				{Voltage: true, Spectrum: true},
				{Voltage: true, Spectrum: false},
			},
		},
		Spectrum: SpectrumConfig{
			Window:    DefaultWindow,
			Reference: DefaultSpectrumReference,
			Limit:     DefaultSpectrumLimit,
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddress: ":8080",
		},
	}

	if path == "" {
		candidates := []string{"scope.yaml", "config.yaml"}
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
			return &cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration against the engine's limits.
func (c *Config) Validate() error {
	a := &c.Acquire
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		return fmt.Errorf("acquire.sample_rate %v outside [%d, %d]", a.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if a.RecordLength <= 0 || a.RecordLength > MaxRecordLength {
		return fmt.Errorf("acquire.record_length %d outside (0, %d]", a.RecordLength, MaxRecordLength)
	}
	if !bitint.IsPowerOfTwo(a.RecordLength) {
		return fmt.Errorf("acquire.record_length %d must be a power of two", a.RecordLength)
	}
	if a.PhysicalChannels < 2 {
		return fmt.Errorf("acquire.physical_channels %d: math channels need channels 1 and 2", a.PhysicalChannels)
	}
	if c.Scope.MathChannels < 0 {
		return fmt.Errorf("scope.math_channels %d must not be negative", c.Scope.MathChannels)
	}
	if _, err := dso.ParseMathMode(c.Scope.MathMode); err != nil {
		return fmt.Errorf("scope.math_mode: %w", err)
	}
	if c.Spectrum.Limit > c.Spectrum.Reference {
		return fmt.Errorf("spectrum.limit_db %v must not exceed spectrum.reference_db %v", c.Spectrum.Limit, c.Spectrum.Reference)
	}
	return nil
}

// ChannelCount returns the total channel count, physical plus derived.
func (c *Config) ChannelCount() int {
	return c.Acquire.PhysicalChannels + c.Scope.MathChannels
}

// ScopeSettings flattens the configuration into the settings struct the
// processing pipeline reads. An unrecognized window name degrades to the
// rectangular window with a warning rather than failing the cycle.
func (c *Config) ScopeSettings() (*dso.Settings, error) {
	mode, err := dso.ParseMathMode(c.Scope.MathMode)
	if err != nil {
		return nil, err
	}

	window, err := dso.ParseWindowFunction(c.Spectrum.Window)
	if err != nil {
		log.Warnf("configuration: %v, falling back to rectangular", err)
	}

	use := make([]dso.ChannelUse, c.ChannelCount())
	for i := range use {
		if i < len(c.Scope.Channels) {
			use[i] = dso.ChannelUse{
				Voltage:  c.Scope.Channels[i].Voltage,
				Spectrum: c.Scope.Channels[i].Spectrum,
			}
		}
	}

	return &dso.Settings{
		Use:               use,
		MathMode:          mode,
		Window:            window,
		SpectrumReference: c.Spectrum.Reference,
		SpectrumLimit:     c.Spectrum.Limit,
	}, nil
}

// applyEnvOverrides applies SCOPE_-prefixed environment variables on top
// of the loaded configuration.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("SCOPE_DEBUG"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = b
		}
	}
	if val, ok := os.LookupEnv("SCOPE_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}
	if val, ok := os.LookupEnv("SCOPE_WS_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.WebSocketEnabled = b
		}
	}
	if val, ok := os.LookupEnv("SCOPE_WS_ADDRESS"); ok {
		cfg.Transport.WebSocketAddress = val
	}
	if val, ok := os.LookupEnv("SCOPE_RECORD_LENGTH"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Acquire.RecordLength = n
		}
	}
}
