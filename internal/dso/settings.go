// SPDX-License-Identifier: MIT
package dso

// Processor transforms one Result in place. Implementations run on the
// per-cycle hot path and should avoid allocations once warmed up.
type Processor interface {
	Process(res *Result)
}

// ChannelUse reports which display surfaces consume a channel. A channel
// unused by both is skipped by the math synthesizer, and its dB conversion
// may be elided by the spectrum analyzer.
type ChannelUse struct {
	Voltage  bool
	Spectrum bool
}

// Settings is the slice of the configuration store the processing pipeline
// reads: per-channel use flags, the math-channel operation, the spectrum
// window and the dB calibration values. The pipeline holds a pointer so a
// settings change takes effect on the next cycle.
type Settings struct {
	Use               []ChannelUse   // indexed by channel id
	MathMode          MathMode       // derived-channel arithmetic
	Window            WindowFunction // spectrum window selector
	SpectrumReference float64        // reference level (dB)
	SpectrumLimit     float64        // lower display limit (dB)
}

// UseFor returns the use flags for a channel, or the zero value when the
// configuration carries no entry for it.
func (s *Settings) UseFor(channel int) ChannelUse {
	if channel < 0 || channel >= len(s.Use) {
		return ChannelUse{}
	}
	return s.Use[channel]
}
