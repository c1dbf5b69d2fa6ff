// SPDX-License-Identifier: MIT
package dso

import "gonum.org/v1/gonum/dsp/fourier"

// RealTransformer converts between a length-N real record and its packed
// half-complex spectrum of the same length: real parts ascending in the
// first half (bins 0..N/2), mirrored imaginary parts descending in the
// tail (bin k's imaginary part at index N-k). Both directions are
// unnormalized, so a forward/inverse round trip scales the record by N.
//
// The spectrum analyzer depends only on this interface, so any transform
// backend can be substituted without touching the analysis algorithm.
type RealTransformer interface {
	// Forward transforms the real record src into packed half-complex
	// form in dst. len(dst) must equal len(src).
	Forward(dst, src []float64)
	// Inverse transforms the packed half-complex record src back into
	// real samples in dst. len(dst) must equal len(src).
	Inverse(dst, src []float64)
}

// FourierTransformer implements RealTransformer on top of gonum's real
// FFT. The plan and coefficient buffer are cached per record length and
// rebuilt only when the length changes. Not safe for concurrent use; the
// analyzer owns one instance.
type FourierTransformer struct {
	length int
	fft    *fourier.FFT
	coeff  []complex128
}

var _ RealTransformer = (*FourierTransformer)(nil)

// NewFourierTransformer returns a transformer with no plan; the first
// call in either direction builds one.
func NewFourierTransformer() *FourierTransformer {
	return &FourierTransformer{}
}

func (t *FourierTransformer) plan(length int) {
	if t.fft != nil && t.length == length {
		return
	}
	t.length = length
	t.fft = fourier.NewFFT(length)
	t.coeff = make([]complex128, length/2+1)
}

// Forward implements RealTransformer.
func (t *FourierTransformer) Forward(dst, src []float64) {
	n := len(src)
	t.plan(n)
	t.coeff = t.fft.Coefficients(t.coeff, src)

	half := n / 2
	dst[0] = real(t.coeff[0])
	for k := 1; k <= half; k++ {
		dst[k] = real(t.coeff[k])
		if k != n-k {
			dst[n-k] = imag(t.coeff[k])
		}
	}
}

// Inverse implements RealTransformer.
func (t *FourierTransformer) Inverse(dst, src []float64) {
	n := len(src)
	t.plan(n)

	half := n / 2
	t.coeff[0] = complex(src[0], 0)
	for k := 1; k <= half; k++ {
		if k != n-k {
			t.coeff[k] = complex(src[k], src[n-k])
		} else {
			t.coeff[k] = complex(src[k], 0)
		}
	}
	t.fft.Sequence(dst, t.coeff)
}
