// SPDX-License-Identifier: MIT
package dso

import (
	"fmt"
	"math"
	"strings"
)

// WindowFunction selects the per-sample weighting applied before the
// spectral transform to reduce edge discontinuity artifacts.
type WindowFunction int

const (
	WindowRectangular WindowFunction = iota
	WindowHamming
	WindowHann
	WindowCosine
	WindowLanczos
	WindowBartlett
	WindowTriangular
	WindowGauss
	WindowBartlettHann
	WindowBlackman
	WindowNuttall
	WindowBlackmanHarris
	WindowBlackmanNuttall
	WindowFlatTop
)

// String returns the configuration name of the window function.
func (w WindowFunction) String() string {
	switch w {
	case WindowRectangular:
		return "rectangular"
	case WindowHamming:
		return "hamming"
	case WindowHann:
		return "hann"
	case WindowCosine:
		return "cosine"
	case WindowLanczos:
		return "lanczos"
	case WindowBartlett:
		return "bartlett"
	case WindowTriangular:
		return "triangular"
	case WindowGauss:
		return "gauss"
	case WindowBartlettHann:
		return "bartlett-hann"
	case WindowBlackman:
		return "blackman"
	case WindowNuttall:
		return "nuttall"
	case WindowBlackmanHarris:
		return "blackman-harris"
	case WindowBlackmanNuttall:
		return "blackman-nuttall"
	case WindowFlatTop:
		return "flat-top"
	default:
		return fmt.Sprintf("WindowFunction(%d)", int(w))
	}
}

// ParseWindowFunction converts a configuration name (case-insensitive) to
// a WindowFunction. Returns WindowRectangular and an error if the name is
// unknown, matching the analyzer's rectangular fallback.
func ParseWindowFunction(name string) (WindowFunction, error) {
	switch strings.ToLower(name) {
	case "rectangular", "rect":
		return WindowRectangular, nil
	case "hamming":
		return WindowHamming, nil
	case "hann", "hanning":
		return WindowHann, nil
	case "cosine":
		return WindowCosine, nil
	case "lanczos":
		return WindowLanczos, nil
	case "bartlett":
		return WindowBartlett, nil
	case "triangular":
		return WindowTriangular, nil
	case "gauss":
		return WindowGauss, nil
	case "bartlett-hann", "bartletthann":
		return WindowBartlettHann, nil
	case "blackman":
		return WindowBlackman, nil
	case "nuttall":
		return WindowNuttall, nil
	case "blackman-harris", "blackmanharris":
		return WindowBlackmanHarris, nil
	case "blackman-nuttall", "blackmannuttall":
		return WindowBlackmanNuttall, nil
	case "flat-top", "flattop":
		return WindowFlatTop, nil
	default:
		return WindowRectangular, fmt.Errorf("unknown window function name: %q", name)
	}
}

// windowCache holds the coefficients computed for the last (kind, length)
// pair. Coefficients are reused verbatim while both keys match and are
// recomputed on any mismatch. Purely a performance optimization: outputs
// are bit-identical whether the cache hits or misses.
type windowCache struct {
	kind   WindowFunction
	length int
	coeffs []float64
}

// get returns the coefficients for the requested kind and length,
// recomputing them only on a key mismatch.
func (c *windowCache) get(kind WindowFunction, length int) []float64 {
	if c.coeffs != nil && c.kind == kind && c.length == length {
		return c.coeffs
	}
	if cap(c.coeffs) < length {
		c.coeffs = make([]float64, length)
	}
	c.coeffs = c.coeffs[:length]
	c.kind = kind
	c.length = length
	computeWindow(c.coeffs, kind)
	return c.coeffs
}

// computeWindow fills coeffs with the window of the given kind. The switch
// is exhaustive over the known kinds; any unrecognized selector falls back
// to the rectangular window.
func computeWindow(coeffs []float64, kind WindowFunction) {
	n := len(coeffs)
	end := float64(n - 1)

	switch kind {
	case WindowHamming:
		for p := range coeffs {
			coeffs[p] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(p)/end)
		}
	case WindowHann:
		for p := range coeffs {
			coeffs[p] = 0.5 * (1 - math.Cos(2*math.Pi*float64(p)/end))
		}
	case WindowCosine:
		for p := range coeffs {
			coeffs[p] = math.Sin(math.Pi * float64(p) / end)
		}
	case WindowLanczos:
		for p := range coeffs {
			x := (2*float64(p)/end - 1) * math.Pi
			if x == 0 {
				coeffs[p] = 1
			} else {
				coeffs[p] = math.Sin(x) / x
			}
		}
	case WindowBartlett:
		for p := range coeffs {
			coeffs[p] = 2 / end * (end/2 - math.Abs(float64(p)-end/2))
		}
	case WindowTriangular:
		for p := range coeffs {
			coeffs[p] = 2 / float64(n) * (float64(n)/2 - math.Abs(float64(p)-end/2))
		}
	case WindowGauss:
		const sigma = 0.4
		for p := range coeffs {
			x := (float64(p) - end/2) / (sigma * end / 2)
			coeffs[p] = math.Exp(-0.5 * x * x)
		}
	case WindowBartlettHann:
		for p := range coeffs {
			coeffs[p] = 0.62 - 0.48*math.Abs(float64(p)/end-0.5) -
				0.38*math.Cos(2*math.Pi*float64(p)/end)
		}
	case WindowBlackman:
		const alpha = 0.16
		for p := range coeffs {
			coeffs[p] = (1-alpha)/2 - 0.5*math.Cos(2*math.Pi*float64(p)/end) +
				alpha/2*math.Cos(4*math.Pi*float64(p)/end)
		}
	case WindowNuttall:
		for p := range coeffs {
			coeffs[p] = 0.355768 - 0.487396*math.Cos(2*math.Pi*float64(p)/end) +
				0.144232*math.Cos(4*math.Pi*float64(p)/end) -
				0.012604*math.Cos(6*math.Pi*float64(p)/end)
		}
	case WindowBlackmanHarris:
		for p := range coeffs {
			coeffs[p] = 0.35875 - 0.48829*math.Cos(2*math.Pi*float64(p)/end) +
				0.14128*math.Cos(4*math.Pi*float64(p)/end) -
				0.01168*math.Cos(6*math.Pi*float64(p)/end)
		}
	case WindowBlackmanNuttall:
		for p := range coeffs {
			coeffs[p] = 0.3635819 - 0.4891775*math.Cos(2*math.Pi*float64(p)/end) +
				0.1365995*math.Cos(4*math.Pi*float64(p)/end) -
				0.0106411*math.Cos(6*math.Pi*float64(p)/end)
		}
	case WindowFlatTop:
		for p := range coeffs {
			coeffs[p] = 1 - 1.93*math.Cos(2*math.Pi*float64(p)/end) +
				1.29*math.Cos(4*math.Pi*float64(p)/end) -
				0.388*math.Cos(6*math.Pi*float64(p)/end) +
				0.028*math.Cos(8*math.Pi*float64(p)/end)
		}
	case WindowRectangular:
		fallthrough
	default:
		for p := range coeffs {
			coeffs[p] = 1
		}
	}
}
