// SPDX-License-Identifier: MIT
/*
Package dso implements the per-acquisition post-processing core of the
oscilloscope: math-channel synthesis, windowed spectrum computation,
DC/AC/RMS decomposition and fundamental-frequency estimation.

The package operates on a per-cycle Result container that the acquisition
layer seeds with physical-channel voltage records. Processing is strictly
sequential within a cycle: the math synthesizer fills derived channels,
then the spectrum analyzer processes every channel in place. Completed
Results are handed to readers through an atomically published snapshot,
so a reader can never observe a partially processed cycle.
*/
package dso

import "sync/atomic"

// SampleBuffer holds an ordered run of real-valued samples together with
// the step between consecutive values: seconds for a voltage record,
// frequency resolution per bin for a spectrum record.
type SampleBuffer struct {
	Sample   []float64
	Interval float64
}

// ChannelRecord is the analyzed state of a single channel within one cycle.
// After the spectrum analyzer has run, RMS² == DC² + AC² within floating
// tolerance.
type ChannelRecord struct {
	Voltage  SampleBuffer // time-domain voltage levels (V)
	Spectrum SampleBuffer // frequency-domain levels (dB once converted)

	Frequency float64 // estimated fundamental frequency (Hz)
	DC        float64 // DC bias
	AC        float64 // RMS of the AC component
	RMS       float64 // total RMS = sqrt(DC² + AC²)
	Valid     bool    // not clipped, distorted or dropped
}

// Result owns the channel records of one acquisition cycle. It is created
// by the acquisition layer with physical voltage buffers populated and
// derived buffers empty, mutated exclusively by the processing pipeline,
// and read-only once published. No record outlives its Result.
type Result struct {
	channels []ChannelRecord
}

// NewResult returns a Result with channelCount empty channel records.
// Records start out valid; acquisition may clear the flag on dropouts.
func NewResult(channelCount int) *Result {
	r := &Result{channels: make([]ChannelRecord, channelCount)}
	for i := range r.channels {
		r.channels[i].Valid = true
	}
	return r
}

// ChannelCount returns the number of channels, physical plus derived.
func (r *Result) ChannelCount() int {
	return len(r.channels)
}

// Data returns the record for the given channel for reading.
// Returns nil if the channel id is out of range.
func (r *Result) Data(channel int) *ChannelRecord {
	if channel < 0 || channel >= len(r.channels) {
		return nil
	}
	return &r.channels[channel]
}

// ModifyData returns the record for the given channel for mutation.
// Only the processing pipeline may call this; readers use Data.
func (r *Result) ModifyData(channel int) *ChannelRecord {
	if channel < 0 || channel >= len(r.channels) {
		return nil
	}
	return &r.channels[channel]
}

// SampleCount returns the largest voltage record length across channels.
func (r *Result) SampleCount() int {
	max := 0
	for i := range r.channels {
		if n := len(r.channels[i].Voltage.Sample); n > max {
			max = n
		}
	}
	return max
}

// Publisher hands completed Results to readers as immutable snapshots.
// The pipeline retains exclusive ownership of a Result until Publish;
// after that the Result is frozen by contract and readers may share it
// freely. There is no locking and no partial visibility: Latest either
// returns a fully processed cycle or nil.
type Publisher struct {
	current atomic.Pointer[Result]
}

// Publish makes res the current snapshot. The caller must not mutate
// res afterward.
func (p *Publisher) Publish(res *Result) {
	p.current.Store(res)
}

// Latest returns the most recently published snapshot, or nil if no
// cycle has completed yet.
func (p *Publisher) Latest() *Result {
	return p.current.Load()
}
