// SPDX-License-Identifier: MIT
package dso

import (
	"reflect"
	"testing"
)

// seedResult builds a Result with two physical channels holding the given
// samples and mathChannels empty derived channels.
func seedResult(ch1, ch2 []float64, interval float64, mathChannels int) *Result {
	res := NewResult(2 + mathChannels)
	res.ModifyData(0).Voltage = SampleBuffer{Sample: ch1, Interval: interval}
	res.ModifyData(1).Voltage = SampleBuffer{Sample: ch2, Interval: interval}
	return res
}

func TestMathModes(t *testing.T) {
	tests := []struct {
		mode     MathMode
		expected []float64
	}{
		{MathModeAdd, []float64{5, 7, 9}},
		{MathModeSubCh2FromCh1, []float64{-3, -3, -3}},
		{MathModeSubCh1FromCh2, []float64{3, 3, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			settings := &Settings{
				Use:      []ChannelUse{{}, {}, {Voltage: true}},
				MathMode: tt.mode,
			}
			res := seedResult([]float64{1, 2, 3}, []float64{4, 5, 6}, 1e-6, 1)
			NewMathChannelSynthesizer(2, settings).Process(res)

			derived := res.Data(2)
			if !reflect.DeepEqual(derived.Voltage.Sample, tt.expected) {
				t.Errorf("mode %v: got %v, expected %v", tt.mode, derived.Voltage.Sample, tt.expected)
			}
			if derived.Voltage.Interval != 1e-6 {
				t.Errorf("mode %v: interval = %v, expected interval of channel 0", tt.mode, derived.Voltage.Interval)
			}
		})
	}
}

func TestMathEmptySourceIsNoOp(t *testing.T) {
	tests := []struct {
		name string
		ch1  []float64
		ch2  []float64
	}{
		{"first empty", nil, []float64{1, 2, 3}},
		{"second empty", []float64{1, 2, 3}, nil},
		{"both empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := &Settings{
				Use:      []ChannelUse{{}, {}, {Voltage: true}},
				MathMode: MathModeAdd,
			}
			res := seedResult(tt.ch1, tt.ch2, 1e-6, 1)

			// Stale data from a previous cycle must survive untouched.
			stale := []float64{9, 9, 9}
			res.ModifyData(2).Voltage = SampleBuffer{Sample: stale, Interval: 2e-6}

			gen := NewMathChannelSynthesizer(2, settings)
			gen.Process(res)
			gen.Process(res) // idempotent

			derived := res.Data(2)
			if !reflect.DeepEqual(derived.Voltage.Sample, []float64{9, 9, 9}) {
				t.Errorf("derived samples changed: got %v", derived.Voltage.Sample)
			}
			if &derived.Voltage.Sample[0] != &stale[0] {
				t.Error("derived sample buffer was replaced")
			}
			if derived.Voltage.Interval != 2e-6 {
				t.Errorf("derived interval changed: got %v", derived.Voltage.Interval)
			}
		})
	}
}

func TestMathDisabledChannelSkipped(t *testing.T) {
	settings := &Settings{
		// Derived channel disabled for both voltage and spectrum display.
		Use:      []ChannelUse{{Voltage: true}, {Voltage: true}, {}},
		MathMode: MathModeAdd,
	}
	res := seedResult([]float64{1, 2, 3}, []float64{4, 5, 6}, 1e-6, 1)
	NewMathChannelSynthesizer(2, settings).Process(res)

	derived := res.Data(2)
	if len(derived.Voltage.Sample) != 0 {
		t.Errorf("disabled derived channel was filled: %v", derived.Voltage.Sample)
	}
	if derived.Voltage.Interval != 0 {
		t.Errorf("disabled derived channel interval set: %v", derived.Voltage.Interval)
	}
}

func TestMathOutputLengthIsMinimum(t *testing.T) {
	settings := &Settings{
		Use:      []ChannelUse{{}, {}, {Spectrum: true}},
		MathMode: MathModeAdd,
	}
	res := seedResult([]float64{1, 2, 3, 4, 5}, []float64{10, 20, 30}, 1e-6, 1)
	NewMathChannelSynthesizer(2, settings).Process(res)

	got := res.Data(2).Voltage.Sample
	expected := []float64{11, 22, 33}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("got %v, expected %v", got, expected)
	}
}

func TestParseMathMode(t *testing.T) {
	for _, mode := range []MathMode{MathModeAdd, MathModeSubCh2FromCh1, MathModeSubCh1FromCh2} {
		parsed, err := ParseMathMode(mode.String())
		if err != nil {
			t.Errorf("ParseMathMode(%q) returned error: %v", mode.String(), err)
		}
		if parsed != mode {
			t.Errorf("ParseMathMode(%q) = %v, expected %v", mode.String(), parsed, mode)
		}
	}

	if _, err := ParseMathMode("multiply"); err == nil {
		t.Error("expected error for unknown math mode name")
	}
}
