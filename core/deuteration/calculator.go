// core/deuteration/calculator.go
// The one-shot calculation pipeline: formula -> adduct -> per-state isotope
// patterns -> preprocessed spectrum -> NNLS fit -> cutoff -> aggregation.
//
// Every call owns all of its data, performs no I/O and holds no global state,
// so any number of calculations may run concurrently without coordination.

package deuteration

import (
	"fmt"

	"deuter-core/adduct"
	"deuter-core/deconv"
	"deuter-core/formula"
	"deuter-core/isotope"
	"deuter-core/spectrum"
)

// Options tunes one calculation. The zero value gives the documented
// defaults: auto cutoff, no preprocessing, 0.05 Da kernel.
type Options struct {
	// Detector used when the adduct spec is "auto"; nil means
	// BasePeakDetector with the common candidate list.
	Detector adduct.Detector
	// Cutoff decides the lowest included state; nil means AutoCutoff.
	Cutoff CutoffStrategy

	Align    bool // shift m/z onto the predicted principal peak
	Baseline bool // subtract the window baseline

	AlignWidth         float64 // search half-window, Da; <=0 means 0.5
	BaselinePercentile float64 // <=0 means 25
	Deconv             deconv.Options
}

// Result is the final, immutable record of one calculation.
type Result struct {
	Formula  string
	Adduct   string
	BaseMZ   float64 // neutral monoisotopic mass of the base molecule
	AdductMZ float64 // observed m/z of the fully deuterated adduct

	N      int   // number of deuterium sites
	Cutoff int   // lowest included state
	States []int // included state indices

	Probabilities []float64 // per included state, sums to 1
	Intensities   []float64 // raw fitted intensities, all states 0..N
	StateMZ       []float64 // principal m/z per state 0..N

	Deuteration float64 // percent
	Uncertainty float64 // percent

	// Plot support for reporting layers.
	Fit      deconv.Fit
	Patterns []isotope.Pattern

	AlignShift    float64
	BaselineLevel float64
	LowConfidence bool
	Warnings      []string
}

// ComputePatterns returns the isotope pattern of every deuteration state of
// the ionised compound, index = state, length = sites+1.
func ComputePatterns(base *formula.Formula, ad *adduct.Adduct) ([]isotope.Pattern, error) {
	ionised, err := ad.Apply(base)
	if err != nil {
		return nil, err
	}
	n := ionised.DeuteriumCount()
	if n == 0 {
		return nil, fmt.Errorf("adduct %s leaves no deuterium in %s: %w",
			ad.Spec, base.String(), formula.ErrNoDeuterium)
	}
	patterns := make([]isotope.Pattern, n+1)
	for k := 0; k <= n; k++ {
		state, err := ionised.AtState(k)
		if err != nil {
			return nil, err
		}
		patterns[k], err = isotope.Generate(state, ad.Charge)
		if err != nil {
			return nil, err
		}
	}
	return patterns, nil
}

// Calculate runs the full pipeline over a raw measured spectrum.
// adductSpec is an adduct like "[M-H]-", "auto" to detect one from the
// spectrum, or empty for "[M]+".
func Calculate(formulaStr, adductSpec string, mz, signal []float64, opt Options) (*Result, error) {
	base, err := formula.ParseDeuterated(formulaStr)
	if err != nil {
		return nil, err
	}
	meas, err := spectrum.New(mz, signal)
	if err != nil {
		return nil, err
	}

	var ad *adduct.Adduct
	switch spec := adductSpec; {
	case spec == "auto":
		det := opt.Detector
		if det == nil {
			det = adduct.BasePeakDetector{}
		}
		ad, err = det.Detect(base, meas.MZ, meas.Signal)
	case spec == "":
		ad, err = adduct.Parse("[M]+")
	default:
		ad, err = adduct.Parse(spec)
	}
	if err != nil {
		return nil, err
	}

	patterns, err := ComputePatterns(base, ad)
	if err != nil {
		return nil, err
	}
	n := len(patterns) - 1

	res := &Result{
		Formula:  base.String(),
		Adduct:   ad.Spec,
		BaseMZ:   base.MonoisotopicMass(),
		AdductMZ: ad.MZ(base.MonoisotopicMass()),
		N:        n,
		StateMZ:  make([]float64, n+1),
		Patterns: patterns,
	}
	for k, p := range patterns {
		res.StateMZ[k] = p.Mono
	}

	if opt.Align {
		width := opt.AlignWidth
		if width <= 0 {
			width = 0.5
		}
		aligned, shift, ok := meas.Align(res.StateMZ[n], width)
		if ok {
			meas = aligned
			res.AlignShift = shift
		} else {
			res.LowConfidence = true
			res.Warnings = append(res.Warnings, "align skipped: too few points near the predicted peak")
		}
	}
	if opt.Baseline {
		pct := opt.BaselinePercentile
		if pct <= 0 {
			pct = 25
		}
		lo, _ := patterns[0].Span()
		_, hi := patterns[n].Span()
		pad := opt.Deconv.WindowPad
		if pad <= 0 {
			pad = 1.0
		}
		sub, level, ok := meas.SubtractBaseline(lo-pad, hi+pad, pct)
		if ok {
			meas = sub
			res.BaselineLevel = level
		} else {
			res.LowConfidence = true
			res.Warnings = append(res.Warnings, "baseline skipped: no points in the pattern window")
		}
	}

	fit, err := deconv.Deconvolve(meas, patterns, opt.Deconv)
	if err != nil {
		return nil, err
	}
	res.Fit = fit
	res.Intensities = fit.Intensities
	if fit.LowConfidence {
		res.LowConfidence = true
		res.Warnings = append(res.Warnings, "under-determined or regularised fit")
	}

	strategy := opt.Cutoff
	if strategy == nil {
		strategy = AutoCutoff{}
	}
	cut, err := strategy.Select(fit.Intensities, res.StateMZ)
	if err != nil {
		return nil, err
	}

	agg, err := Aggregate(fit.Intensities, cut, fit.RelativeResidual())
	if err != nil {
		return nil, err
	}
	res.Cutoff = agg.Cutoff
	res.States = agg.States
	res.Probabilities = agg.Probabilities
	res.Deuteration = agg.Deuteration
	res.Uncertainty = agg.Uncertainty
	if agg.LowConfidence {
		res.LowConfidence = true
		res.Warnings = append(res.Warnings, "no signal above the cutoff")
	}
	return res, nil
}
