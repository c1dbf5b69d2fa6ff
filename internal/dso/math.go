// SPDX-License-Identifier: MIT
package dso

import (
	"fmt"
	"strings"
)

// MathMode selects the arithmetic used to derive a math channel from the
// first two physical channels.
type MathMode int

const (
	MathModeAdd           MathMode = iota // out = ch1 + ch2
	MathModeSubCh2FromCh1                 // out = ch1 - ch2
	MathModeSubCh1FromCh2                 // out = ch2 - ch1
)

// String returns the configuration name of the math mode.
func (m MathMode) String() string {
	switch m {
	case MathModeAdd:
		return "add"
	case MathModeSubCh2FromCh1:
		return "ch1-ch2"
	case MathModeSubCh1FromCh2:
		return "ch2-ch1"
	default:
		return fmt.Sprintf("MathMode(%d)", int(m))
	}
}

// ParseMathMode converts a configuration name (case-insensitive) to a
// MathMode. Returns MathModeAdd and an error if the name is unknown.
func ParseMathMode(name string) (MathMode, error) {
	switch strings.ToLower(name) {
	case "add", "ch1+ch2":
		return MathModeAdd, nil
	case "ch1-ch2", "sub":
		return MathModeSubCh2FromCh1, nil
	case "ch2-ch1":
		return MathModeSubCh1FromCh2, nil
	default:
		return MathModeAdd, fmt.Errorf("unknown math mode name: %q", name)
	}
}

// MathChannelSynthesizer populates derived-channel voltage records from
// physical channels 0 and 1. It is stateless between cycles: output
// depends only on the current inputs and the configured mode.
type MathChannelSynthesizer struct {
	physicalChannels int
	settings         *Settings
}

var _ Processor = (*MathChannelSynthesizer)(nil)

// NewMathChannelSynthesizer returns a synthesizer filling channels
// [physicalChannels, channelCount) of each processed Result.
func NewMathChannelSynthesizer(physicalChannels int, settings *Settings) *MathChannelSynthesizer {
	return &MathChannelSynthesizer{
		physicalChannels: physicalChannels,
		settings:         settings,
	}
}

// Process fills every enabled derived channel of res. If either source
// channel has an empty voltage record the whole call is a no-op: derived
// records keep whatever data they already hold, so a consumer may observe
// stale derived samples after a cycle with missing physical data.
func (g *MathChannelSynthesizer) Process(res *Result) {
	if res.ChannelCount() < 2 {
		return
	}
	ch1 := res.Data(0).Voltage.Sample
	ch2 := res.Data(1).Voltage.Sample
	if len(ch1) == 0 || len(ch2) == 0 {
		return
	}
	length := min(len(ch1), len(ch2))

	for channel := g.physicalChannels; channel < res.ChannelCount(); channel++ {
		use := g.settings.UseFor(channel)
		if !use.Voltage && !use.Spectrum {
			continue
		}
		rec := res.ModifyData(channel)
		rec.Voltage.Interval = res.Data(0).Voltage.Interval

		out := rec.Voltage.Sample
		if cap(out) < length {
			out = make([]float64, length)
		} else {
			out = out[:length]
		}
		switch g.settings.MathMode {
		case MathModeAdd:
			for i := range out {
				out[i] = ch1[i] + ch2[i]
			}
		case MathModeSubCh2FromCh1:
			for i := range out {
				out[i] = ch1[i] - ch2[i]
			}
		case MathModeSubCh1FromCh2:
			for i := range out {
				out[i] = ch2[i] - ch1[i]
			}
		}
		rec.Voltage.Sample = out
	}
}
