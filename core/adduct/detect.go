// core/adduct/detect.go
// Auto-detection of the ionisation adduct from a measured spectrum.
//
// Detection is a tunable policy, kept behind the Detector interface so
// alternate heuristics stay swappable and testable in isolation.

package adduct

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"deuter-core/formula"
)

// CommonAdducts is the default candidate list for auto-detection, ordered by
// how often they occur in practice.
var CommonAdducts = []string{
	"[M]+",
	"[M+H]+",
	"[M+Na]+",
	"[M+H2]2+",
	"[2M+H]+",
	"[M-H]-",
	"[2M-H]-",
	"[M-H2]2-",
	"[M+Cl]-",
	"[M-H3O]-",
}

// Detector selects an adduct for a base formula given the measured spectrum.
type Detector interface {
	Detect(base *formula.Formula, mz, signal []float64) (*Adduct, error)
}

// BasePeakDetector scores each candidate by the most intense measured peak
// within Tolerance of its predicted m/z, and picks the highest-scoring one.
// Ties are broken by the smallest absolute fragment mass delta. Works best on
// highly deuterated samples, where the predicted peak dominates.
type BasePeakDetector struct {
	Candidates []string // adduct specs; nil means CommonAdducts
	Tolerance  float64  // Da; <=0 means 0.5
}

// Detect implements Detector.
func (d BasePeakDetector) Detect(base *formula.Formula, mz, signal []float64) (*Adduct, error) {
	if len(mz) == 0 || len(mz) != len(signal) {
		return nil, errors.New("adduct: cannot auto-detect without spectrum data")
	}
	cands := d.Candidates
	if cands == nil {
		cands = CommonAdducts
	}
	tol := d.Tolerance
	if tol <= 0 {
		tol = 0.5
	}

	var (
		best       *Adduct
		bestSignal = math.Inf(-1)
		bestDelta  float64
	)
	for _, spec := range cands {
		a, err := Parse(spec)
		if err != nil {
			continue
		}
		// Candidates that would strip absent atoms do not apply.
		if _, err := a.Apply(base); err != nil {
			continue
		}
		pred := a.MZ(base.MonoisotopicMass())
		s, ok := maxSignalWithin(mz, signal, pred-tol, pred+tol)
		if !ok {
			continue
		}
		delta := math.Abs(a.MassDelta())
		if s > bestSignal || (s == bestSignal && delta < bestDelta) {
			best, bestSignal, bestDelta = a, s, delta
		}
	}
	if best == nil {
		return nil, fmt.Errorf("adduct: no candidate matches a peak in the spectrum (tolerance %.2f Da)", tol)
	}
	return best, nil
}

// maxSignalWithin returns the highest signal with lo <= mz <= hi.
func maxSignalWithin(mz, signal []float64, lo, hi float64) (float64, bool) {
	i := sort.SearchFloat64s(mz, lo)
	j := sort.SearchFloat64s(mz, hi)
	for j < len(mz) && mz[j] <= hi {
		j++
	}
	if i >= j {
		return 0, false
	}
	max := signal[i]
	for k := i + 1; k < j; k++ {
		if signal[k] > max {
			max = signal[k]
		}
	}
	return max, true
}
