// SPDX-License-Identifier: MIT
package dso

import (
	"math"
	"reflect"
	"testing"
)

// sineRecord samples amplitude·sin(2πft) + bias at the given interval.
func sineRecord(n int, interval, freq, amplitude, bias float64) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude*math.Sin(2*math.Pi*freq*float64(i)*interval) + bias
	}
	return samples
}

// analyzerResult builds a single-channel Result around the given record.
func analyzerResult(samples []float64, interval float64) *Result {
	res := NewResult(1)
	res.ModifyData(0).Voltage = SampleBuffer{Sample: samples, Interval: interval}
	return res
}

func displaySettings(window WindowFunction) *Settings {
	return &Settings{
		Use:               []ChannelUse{{Voltage: true, Spectrum: true}},
		Window:            window,
		SpectrumReference: 0,
		SpectrumLimit:     -60,
	}
}

func TestSpectrumLengthIsHalfMinusOne(t *testing.T) {
	for _, n := range []int{8, 64, 1024} {
		settings := displaySettings(WindowHann)
		res := analyzerResult(sineRecord(n, 1e-4, 100, 1, 0), 1e-4)
		NewSpectrumAnalyzer(settings, nil).Process(res)

		got := len(res.Data(0).Spectrum.Sample)
		if got != n/2-1 {
			t.Errorf("n=%d: spectrum length = %d, expected %d", n, got, n/2-1)
		}
	}
}

func TestSpectrumInterval(t *testing.T) {
	const n = 512
	const interval = 1.0 / 48000
	settings := displaySettings(WindowHann)
	res := analyzerResult(sineRecord(n, interval, 1000, 1, 0), interval)
	NewSpectrumAnalyzer(settings, nil).Process(res)

	expected := 1 / (interval * float64(n))
	if got := res.Data(0).Spectrum.Interval; math.Abs(got-expected) > 1e-9 {
		t.Errorf("spectrum interval = %v, expected %v", got, expected)
	}
}

func TestStatisticsIdentity(t *testing.T) {
	const n = 1000
	const interval = 1.0 / 48000
	samples := sineRecord(n, interval, 997, 1.5, 0.75)

	settings := displaySettings(WindowBlackman)
	res := analyzerResult(samples, interval)
	NewSpectrumAnalyzer(settings, nil).Process(res)
	rec := res.Data(0)

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)
	if math.Abs(rec.DC-mean) > 1e-12 {
		t.Errorf("dc = %v, expected the sample mean %v", rec.DC, mean)
	}

	if lhs, rhs := rec.AC*rec.AC+rec.DC*rec.DC, rec.RMS*rec.RMS; math.Abs(lhs-rhs) > 1e-9 {
		t.Errorf("ac² + dc² = %v, rms² = %v", lhs, rhs)
	}
}

func TestEmptyChannelCleared(t *testing.T) {
	settings := displaySettings(WindowHann)
	res := NewResult(1)

	// Simulate stale spectrum data from a previous cycle.
	rec := res.ModifyData(0)
	rec.Spectrum = SampleBuffer{Sample: []float64{1, 2, 3}, Interval: 42}

	NewSpectrumAnalyzer(settings, nil).Process(res)

	if rec.Spectrum.Interval != 0 {
		t.Errorf("spectrum interval = %v, expected 0", rec.Spectrum.Interval)
	}
	if len(rec.Spectrum.Sample) != 0 {
		t.Errorf("spectrum samples = %v, expected empty", rec.Spectrum.Sample)
	}
}

func TestDBFloorClampOnSilentRecord(t *testing.T) {
	// A constant record has zero AC content: every magnitude is 0, the dB
	// conversion yields -Inf and every bin must land exactly on the floor.
	const n = 256
	settings := &Settings{
		Use:               []ChannelUse{{Spectrum: true}},
		Window:            WindowHann,
		SpectrumReference: -10,
		SpectrumLimit:     -70,
	}
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 3.3
	}
	res := analyzerResult(samples, 1e-5)
	NewSpectrumAnalyzer(settings, nil).Process(res)

	floor := settings.SpectrumLimit - settings.SpectrumReference
	for i, v := range res.Data(0).Spectrum.Sample {
		if v != floor {
			t.Errorf("bin %d = %v, expected exactly the floor %v", i, v, floor)
		}
	}
	if got := res.Data(0).Frequency; got != 0 {
		t.Errorf("frequency = %v for a silent record, expected 0", got)
	}
}

func TestSpectralPeakFrequencyEstimate(t *testing.T) {
	// 1 kHz at 48 kHz: the period of 48 samples is below the
	// autocorrelation resolution threshold, so the spectral peak decides.
	const n = 2048
	const interval = 1.0 / 48000
	const freq = 1000.0

	settings := displaySettings(WindowHann)
	res := analyzerResult(sineRecord(n, interval, freq, 1, 0), interval)
	NewSpectrumAnalyzer(settings, nil).Process(res)

	resolution := 1 / (interval * n)
	if got := res.Data(0).Frequency; math.Abs(got-freq) > resolution {
		t.Errorf("frequency = %v, expected %v within one bin (%v)", got, freq, resolution)
	}
}

func TestAutocorrelationFrequencyEstimate(t *testing.T) {
	// 200 Hz at 48 kHz: the period of 240 samples gives the
	// autocorrelation enough resolution, and with the spectrum display
	// disabled the dB pass never runs to override it.
	const n = 1024
	const interval = 1.0 / 48000
	const freq = 200.0

	settings := &Settings{
		Use:    []ChannelUse{{Voltage: true}},
		Window: WindowHann,
	}
	res := analyzerResult(sineRecord(n, interval, freq, 1, 0), interval)
	NewSpectrumAnalyzer(settings, nil).Process(res)

	if got := res.Data(0).Frequency; math.Abs(got-freq) > 5 {
		t.Errorf("frequency = %v, expected %v ±5 Hz", got, freq)
	}
}

func TestDeterministicWithAndWithoutWarmCache(t *testing.T) {
	const n = 512
	const interval = 1.0 / 44100
	samples := sineRecord(n, interval, 440, 1, 0.25)

	settings := displaySettings(WindowBlackmanHarris)

	warm := NewSpectrumAnalyzer(settings, nil)
	first := analyzerResult(append([]float64(nil), samples...), interval)
	warm.Process(first)
	second := analyzerResult(append([]float64(nil), samples...), interval)
	warm.Process(second) // cache hit

	cold := NewSpectrumAnalyzer(settings, nil)
	third := analyzerResult(append([]float64(nil), samples...), interval)
	cold.Process(third) // cache miss

	for _, res := range []*Result{second, third} {
		a, b := first.Data(0), res.Data(0)
		if !reflect.DeepEqual(a.Spectrum, b.Spectrum) {
			t.Error("spectrum outputs are not bit-identical across repeated runs")
		}
		if a.Frequency != b.Frequency || a.DC != b.DC || a.AC != b.AC || a.RMS != b.RMS {
			t.Error("scalar outputs are not bit-identical across repeated runs")
		}
	}
}

func TestWindowKindsProduceDifferentSpectra(t *testing.T) {
	const n = 512
	const interval = 1.0 / 48000
	samples := sineRecord(n, interval, 1234, 1, 0)

	spectra := make(map[WindowFunction][]float64)
	for _, kind := range []WindowFunction{WindowHann, WindowHamming, WindowFlatTop} {
		res := analyzerResult(append([]float64(nil), samples...), interval)
		NewSpectrumAnalyzer(displaySettings(kind), nil).Process(res)
		spectra[kind] = res.Data(0).Spectrum.Sample
	}

	if reflect.DeepEqual(spectra[WindowHann], spectra[WindowHamming]) {
		t.Error("hann and hamming produced identical spectra")
	}
	if reflect.DeepEqual(spectra[WindowHann], spectra[WindowFlatTop]) {
		t.Error("hann and flat-top produced identical spectra")
	}
}

func TestAnalyzerSteadyStateAllocations(t *testing.T) {
	const n = 1024
	const interval = 1.0 / 48000
	settings := displaySettings(WindowHann)
	res := analyzerResult(sineRecord(n, interval, 500, 1, 0), interval)
	analyzer := NewSpectrumAnalyzer(settings, nil)

	// Warm-up plans the transform and fills the caches.
	analyzer.Process(res)

	allocs := testing.AllocsPerRun(50, func() {
		analyzer.Process(res)
	})
	if allocs > 0 {
		t.Errorf("expected zero allocations in steady-state Process, got %.1f", allocs)
	}
}

func BenchmarkSpectrumAnalyzer(b *testing.B) {
	const n = 2048
	const interval = 1.0 / 48000
	settings := displaySettings(WindowHann)
	res := analyzerResult(sineRecord(n, interval, 440, 1, 0), interval)
	analyzer := NewSpectrumAnalyzer(settings, nil)
	analyzer.Process(res)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		analyzer.Process(res)
	}
}
