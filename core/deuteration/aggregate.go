// core/deuteration/aggregate.go
// Normalisation of fitted state intensities into probabilities, the overall
// %deuteration, and its uncertainty.
//
// Uncertainty model: the deconvolution residual, relative to the measured
// signal magnitude in the window, is taken as the fractional uncertainty of
// the recovered envelope, and propagated linearly to the deuteration value:
//
//	uncertainty = %deuteration * (||residual|| / ||signal||)
//
// A perfect reconstruction therefore reports ±0, and a residual as large as
// the signal itself makes the estimate as large as the value. This is an
// approximation, not a formal confidence interval.

package deuteration

import "fmt"

// Aggregation is the normalised outcome over the included states.
type Aggregation struct {
	Cutoff        int       // lowest included state
	States        []int     // included state indices, cutoff..n
	Probabilities []float64 // over included states, sums to 1
	Deuteration   float64   // percent
	Uncertainty   float64   // percent, same scale as Deuteration
	LowConfidence bool      // set when the included signal vanishes
}

// Aggregate turns fitted intensities into per-state probabilities and the
// overall %deuteration. relResidual is Fit.RelativeResidual. States below
// cutoff are excluded from normalisation: they are unreliable, not zero.
func Aggregate(intensities []float64, cutoff int, relResidual float64) (Aggregation, error) {
	n := len(intensities) - 1
	if n < 1 {
		return Aggregation{}, fmt.Errorf("aggregate: need at least 2 states, got %d", n+1)
	}
	if cutoff < 0 || cutoff > n {
		return Aggregation{}, fmt.Errorf("aggregate: cutoff %d out of range 0..%d", cutoff, n)
	}
	for k, v := range intensities {
		if v < 0 {
			return Aggregation{}, fmt.Errorf("aggregate: negative intensity %g at state %d", v, k)
		}
	}

	agg := Aggregation{Cutoff: cutoff}
	total := 0.0
	for k := cutoff; k <= n; k++ {
		agg.States = append(agg.States, k)
		total += intensities[k]
	}

	agg.Probabilities = make([]float64, len(agg.States))
	if total > 0 {
		for i, k := range agg.States {
			agg.Probabilities[i] = intensities[k] / total
		}
	} else {
		// No usable signal at all: report a flat distribution instead of
		// NaNs and let the flag tell the caller not to trust it.
		agg.LowConfidence = true
		for i := range agg.Probabilities {
			agg.Probabilities[i] = 1.0 / float64(len(agg.Probabilities))
		}
	}

	for i, k := range agg.States {
		agg.Deuteration += float64(k) / float64(n) * agg.Probabilities[i]
	}
	agg.Deuteration *= 100.0
	if relResidual < 0 {
		relResidual = 0
	}
	agg.Uncertainty = agg.Deuteration * relResidual
	return agg, nil
}
