// SPDX-License-Identifier: MIT
package acquire

import (
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"

	"scope/internal/dso"
	"scope/internal/log"
)

// Normalization factor mapping int32 capture samples to [-1.0, 1.0).
const sampleNorm = 1.0 / float64(1<<31)

// Initialize sets up the PortAudio subsystem. Must be called before any
// capture operation and paired with a Terminate call.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate cleanly shuts down the PortAudio subsystem.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// DeviceSourceConfig describes one capture source.
type DeviceSourceConfig struct {
	DeviceID     int     // device index, -1 for the system default
	SampleRate   float64 // Hz
	RecordLength int     // samples per channel per cycle
	Channels     int     // physical channels captured
	MathChannels int     // derived channels appended to each Result
	LowLatency   bool
}

// DeviceSource captures fixed-length records from a PortAudio input
// stream and produces one seeded Result per cycle. The capture buffer is
// pre-allocated; each Capture call allocates only the Result it hands
// over, since the pipeline takes exclusive ownership of it.
type DeviceSource struct {
	cfg    DeviceSourceConfig
	stream *portaudio.Stream
	buffer []int32 // interleaved capture buffer, frames × channels
}

// OpenDeviceSource opens and starts a capture stream on the configured
// input device.
func OpenDeviceSource(cfg DeviceSourceConfig) (*DeviceSource, error) {
	device, err := InputDevice(cfg.DeviceID)
	if err != nil {
		return nil, err
	}
	if cfg.Channels > device.MaxInputChannels {
		return nil, fmt.Errorf("device %q supports %d input channels, need %d",
			device.Name, device.MaxInputChannels, cfg.Channels)
	}

	latency := device.DefaultHighInputLatency
	if cfg.LowLatency {
		latency = device.DefaultLowInputLatency
	}

	src := &DeviceSource{
		cfg:    cfg,
		buffer: make([]int32, cfg.RecordLength*cfg.Channels),
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: cfg.Channels,
			Latency:  latency,
		},
		FramesPerBuffer: cfg.RecordLength,
		SampleRate:      cfg.SampleRate,
	}
	stream, err := portaudio.OpenStream(params, &src.buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start capture stream: %w", err)
	}
	src.stream = stream

	log.Infof("acquire: capturing %d×%d samples at %.0f Hz from %q (latency %s)",
		cfg.Channels, cfg.RecordLength, cfg.SampleRate, device.Name,
		latency.Round(time.Microsecond))
	return src, nil
}

// Capture blocks until one full record has been read and returns it as a
// fresh Result with deinterleaved, normalized physical channels and empty
// derived channels.
func (s *DeviceSource) Capture() (*dso.Result, error) {
	if err := s.stream.Read(); err != nil {
		return nil, fmt.Errorf("capture read failed: %w", err)
	}

	interval := 1.0 / s.cfg.SampleRate
	res := dso.NewResult(s.cfg.Channels + s.cfg.MathChannels)
	for ch := 0; ch < s.cfg.Channels; ch++ {
		samples := make([]float64, s.cfg.RecordLength)
		for i := range samples {
			samples[i] = float64(s.buffer[i*s.cfg.Channels+ch]) * sampleNorm
		}
		rec := res.ModifyData(ch)
		rec.Voltage.Sample = samples
		rec.Voltage.Interval = interval
	}
	return res, nil
}

// Close stops and closes the capture stream.
func (s *DeviceSource) Close() error {
	if s.stream == nil {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		return err
	}
	err := s.stream.Close()
	s.stream = nil
	return err
}
