// SPDX-License-Identifier: MIT
package dso

import "math"

// SpectrumAnalyzer computes, for every channel with voltage data, a
// windowed spectrum, the DC/AC/RMS decomposition and a best-effort
// fundamental-frequency estimate. The frequency comes from an
// autocorrelation pass over the inverse-transformed power spectrum,
// superseded by the spectral peak when the autocorrelation resolution is
// insufficient.
//
// Scratch buffers and the window-coefficient cache are retained between
// cycles so a steady-state Process call performs no allocations. None of
// that state is semantic: identical inputs produce bit-identical outputs
// whether caches hit or miss.
type SpectrumAnalyzer struct {
	settings  *Settings
	transform RealTransformer

	window      windowCache
	windowed    []float64 // window · (sample - dc)
	power       []float64 // packed power spectrum fed to the inverse transform
	correlation []float64 // autocorrelation of the windowed record
}

var _ Processor = (*SpectrumAnalyzer)(nil)

// NewSpectrumAnalyzer returns an analyzer reading settings on every cycle.
// A nil transform selects the gonum-backed FourierTransformer.
func NewSpectrumAnalyzer(settings *Settings, transform RealTransformer) *SpectrumAnalyzer {
	if transform == nil {
		transform = NewFourierTransformer()
	}
	return &SpectrumAnalyzer{
		settings:  settings,
		transform: transform,
	}
}

// Process analyzes every channel of res in place. Channels with an empty
// voltage record get a cleared spectrum and are otherwise skipped. Odd
// record lengths are not specially handled; the half-spectrum length
// truncates to N/2.
func (a *SpectrumAnalyzer) Process(res *Result) {
	for channel := 0; channel < res.ChannelCount(); channel++ {
		rec := res.ModifyData(channel)

		n := len(rec.Voltage.Sample)
		if n == 0 {
			rec.Spectrum.Interval = 0
			rec.Spectrum.Sample = rec.Spectrum.Sample[:0]
			continue
		}

		window := a.window.get(a.settings.Window, n)
		a.grow(n)

		rec.Spectrum.Interval = 1 / (rec.Voltage.Interval * float64(n))
		dftLength := n / 2

		// DC bias, then RMS of the AC component; the window applies to
		// the AC component only.
		dc := 0.0
		for _, v := range rec.Voltage.Sample {
			dc += v
		}
		dc /= float64(n)
		ac2 := 0.0
		for i, v := range rec.Voltage.Sample {
			s := v - dc
			ac2 += s * s
			a.windowed[i] = window[i] * s
		}
		ac2 /= float64(n)
		rec.DC = dc
		rec.AC = math.Sqrt(ac2)
		rec.RMS = math.Sqrt(dc*dc + ac2)

		spectrum := rec.Spectrum.Sample
		if cap(spectrum) < n {
			spectrum = make([]float64, n)
		} else {
			spectrum = spectrum[:n]
		}
		a.transform.Forward(spectrum, a.windowed)

		// Build the packed power spectrum for the autocorrelation and, in
		// the same pass, overwrite bins 1..dftLength-1 with magnitudes.
		// Bins 0 and dftLength are purely real; everything past dftLength
		// is zero so the inverse transform sees no mirrored content.
		correction := 1 / (float64(dftLength) * float64(dftLength))
		a.power[0] = spectrum[0] * spectrum[0] * correction
		for k := 1; k < dftLength; k++ {
			re, im := spectrum[k], spectrum[n-k]
			a.power[k] = (re*re + im*im) * correction
			spectrum[k] = math.Sqrt(re*re + im*im)
		}
		if dftLength > 0 {
			a.power[dftLength] = spectrum[dftLength] * spectrum[dftLength] * correction
		}
		for k := dftLength + 1; k < n; k++ {
			a.power[k] = 0
		}

		// The mirrored tail carries no further information.
		if dftLength > 0 {
			spectrum = spectrum[:dftLength-1]
		} else {
			spectrum = spectrum[:0]
		}
		rec.Spectrum.Sample = spectrum

		a.transform.Inverse(a.correlation, a.power)

		// Scan the autocorrelation for the first peak rising above both
		// the running maximum and the running minimum seen so far.
		minimum := a.correlation[0]
		peak := 0.0
		peakPosition := 0
		for p := 1; p < n/2; p++ {
			c := a.correlation[p]
			if c > peak && c > minimum {
				peak = c
				peakPosition = p
			} else if c < minimum {
				minimum = c
			}
		}
		// Below ~100 positions the lag quantization error exceeds 1%, so
		// the estimate is discarded in favor of the spectral peak.
		if peakPosition > 100 {
			rec.Frequency = 1 / (rec.Voltage.Interval * float64(peakPosition))
		} else {
			rec.Frequency = 0
		}

		// Convert magnitudes to dB relative to the reference level when
		// the channel's spectrum is displayed, or when the autocorrelation
		// produced no usable frequency.
		peakPos := 0
		if a.settings.UseFor(channel).Spectrum || rec.Frequency == 0 {
			offset := 60 - a.settings.SpectrumReference - 20*math.Log10(float64(dftLength))
			floor := a.settings.SpectrumLimit - a.settings.SpectrumReference
			peakValue := math.Inf(-1)
			for i, v := range spectrum {
				value := 20*math.Log10(math.Abs(v)) + offset
				if value < floor {
					value = floor
				}
				spectrum[i] = value
				if value > peakValue {
					peakValue = value
					peakPos = i
				}
			}
		}
		// A peak at bin 0 is indistinguishable from "no peak" here, so a
		// genuine DC-adjacent spectral peak is discarded.
		if peakPos != 0 {
			rec.Frequency = rec.Spectrum.Interval * float64(peakPos)
		}
	}
}

// grow resizes the scratch buffers for an n-sample record, reallocating
// only when the capacity is insufficient.
func (a *SpectrumAnalyzer) grow(n int) {
	if cap(a.windowed) < n {
		a.windowed = make([]float64, n)
		a.power = make([]float64, n)
		a.correlation = make([]float64, n)
	}
	a.windowed = a.windowed[:n]
	a.power = a.power[:n]
	a.correlation = a.correlation[:n]
}
