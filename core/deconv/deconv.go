// core/deconv/deconv.go
// Non-negative deconvolution of overlapping isotope envelopes.
//
// Each theoretical pattern is broadened with a Gaussian instrument kernel and
// sampled at the measured m/z positions, giving one dense basis vector per
// deuteration state. The measured window is then fit as a non-negative linear
// combination of the bases (NNLS). With fewer usable points than states the
// problem is under-determined; a ridge-regularised solve with negative
// clipping still yields a usable, flagged, best-effort result.

package deconv

import (
	"errors"
	"math"

	"deuter-core/isotope"
	"deuter-core/spectrum"
)

// fwhmToSigma converts a full-width-half-maximum to a Gaussian sigma.
const fwhmToSigma = 2.354820045

// ErrEmptyWindow means no measured points fall inside the pattern span.
var ErrEmptyWindow = errors.New("deconv: no spectrum points inside the pattern window")

// Options tunes the instrument model.
type Options struct {
	FWHM      float64 // Gaussian kernel width, Da; <=0 means 0.05
	WindowPad float64 // window padding past the pattern span, Da; <=0 means 1.0
}

// Fit is the outcome of one deconvolution.
type Fit struct {
	Intensities []float64 // one per state, >= 0
	Composite   []float64 // reconstructed curve at Window sample positions
	Window      spectrum.Spectrum
	Residual    float64 // ||measured - composite||2 inside the window
	// LowConfidence marks under-determined or regularised solves.
	LowConfidence bool
}

// RelativeResidual is the residual norm over the measured signal norm,
// 0 for a perfect fit. Used upstream for the uncertainty estimate.
func (f Fit) RelativeResidual() float64 {
	var sig float64
	for _, y := range f.Window.Signal {
		sig += y * y
	}
	if sig == 0 {
		return 0
	}
	return f.Residual / math.Sqrt(sig)
}

// Deconvolve fits the patterns against the measured spectrum.
func Deconvolve(s spectrum.Spectrum, patterns []isotope.Pattern, opt Options) (Fit, error) {
	if len(patterns) == 0 {
		return Fit{}, errors.New("deconv: no patterns")
	}
	fwhm := opt.FWHM
	if fwhm <= 0 {
		fwhm = 0.05
	}
	pad := opt.WindowPad
	if pad <= 0 {
		pad = 1.0
	}

	lo, hi := patterns[0].Span()
	for _, p := range patterns[1:] {
		plo, phi := p.Span()
		lo = math.Min(lo, plo)
		hi = math.Max(hi, phi)
	}
	win := s.Window(lo-pad, hi+pad)
	if win.Len() == 0 {
		return Fit{}, ErrEmptyWindow
	}

	sigma := fwhm / fwhmToSigma
	bases := make([][]float64, len(patterns))
	for i, p := range patterns {
		bases[i] = sampleBasis(p, win.MZ, sigma)
	}

	fit := Fit{Window: win}
	fit.Intensities, fit.LowConfidence = solveNonNegative(bases, win.Signal)
	if win.Len() < len(patterns) {
		fit.LowConfidence = true
	}

	fit.Composite = make([]float64, win.Len())
	for i, b := range bases {
		c := fit.Intensities[i]
		if c == 0 {
			continue
		}
		for j, v := range b {
			fit.Composite[j] += c * v
		}
	}
	var r float64
	for j, y := range win.Signal {
		d := y - fit.Composite[j]
		r += d * d
	}
	fit.Residual = math.Sqrt(r)
	return fit, nil
}

// sampleBasis evaluates the Gaussian-broadened pattern at the sample
// positions. Peak amplitudes equal the line abundances, so solved
// coefficients carry peak-height scale.
func sampleBasis(p isotope.Pattern, at []float64, sigma float64) []float64 {
	out := make([]float64, len(at))
	inv := 1.0 / (2 * sigma * sigma)
	// Anything beyond 6 sigma contributes less than 2e-8 of the peak.
	reach := 6 * sigma
	for _, pk := range p.Peaks {
		for j, x := range at {
			d := x - pk.MZ
			if d < -reach || d > reach {
				continue
			}
			out[j] += pk.Abundance * math.Exp(-d*d*inv)
		}
	}
	return out
}
