// SPDX-License-Identifier: MIT
package transport

import "scope/internal/dso"

// Transport defines a generic interface for pushing cycle snapshots to
// render/export consumers. Implementations must be safe for use from the
// acquisition loop: Send never blocks and drops frames under pressure.
type Transport interface {
	Send(data any) error
	Close() error
}

// ChannelFrame is the wire form of one analyzed channel.
type ChannelFrame struct {
	ID               int       `json:"id"`
	Frequency        float64   `json:"frequency"`
	DC               float64   `json:"dc"`
	AC               float64   `json:"ac"`
	RMS              float64   `json:"rms"`
	Valid            bool      `json:"valid"`
	SpectrumInterval float64   `json:"spectrum_interval"`
	Spectrum         []float64 `json:"spectrum,omitempty"`
}

// Frame is the wire form of one published cycle snapshot.
type Frame struct {
	Cycle    uint64         `json:"cycle"`
	Channels []ChannelFrame `json:"channels"`
}

// Snapshot flattens a published Result into a Frame. Published Results
// are immutable, so the spectrum slices are shared rather than copied.
func Snapshot(res *dso.Result, cycle uint64) Frame {
	frame := Frame{
		Cycle:    cycle,
		Channels: make([]ChannelFrame, res.ChannelCount()),
	}
	for ch := range frame.Channels {
		rec := res.Data(ch)
		frame.Channels[ch] = ChannelFrame{
			ID:               ch,
			Frequency:        rec.Frequency,
			DC:               rec.DC,
			AC:               rec.AC,
			RMS:              rec.RMS,
			Valid:            rec.Valid,
			SpectrumInterval: rec.Spectrum.Interval,
			Spectrum:         rec.Spectrum.Sample,
		}
	}
	return frame
}
