// core/deuteration/cutoff.go
// Selection of the lowest deuteration state reliable enough to include.
// The heuristics are empirically tuned policies, so each lives behind the
// CutoffStrategy interface and can be swapped or tested on its own.

package deuteration

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CutoffStrategy picks the lowest included state from the fitted intensities.
// stateMZ carries the principal-isotope m/z of each state for m/z-based
// policies; both slices have one entry per state, index = state.
type CutoffStrategy interface {
	Select(intensities, stateMZ []float64) (int, error)
}

// AutoCutoff excludes the leading run of dead states: scanning upward, the
// first run of two or more consecutive states below Fraction of the maximum
// intensity marks everything up to its end as unreliable. Without such a run
// every state is included.
type AutoCutoff struct {
	Fraction float64 // of the maximum intensity; <=0 means 0.01
}

func (c AutoCutoff) Select(intensities, _ []float64) (int, error) {
	frac := c.Fraction
	if frac <= 0 {
		frac = 0.01
	}
	max := 0.0
	for _, v := range intensities {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return 0, nil
	}
	threshold := frac * max
	for k := 0; k+1 < len(intensities); k++ {
		if intensities[k] >= threshold || intensities[k+1] >= threshold {
			continue
		}
		// Found the first sub-threshold pair; extend to the end of the run.
		end := k + 1
		for end+1 < len(intensities) && intensities[end+1] < threshold {
			end++
		}
		if end+1 >= len(intensities) {
			// The run reaches the top state; nothing left to include.
			return 0, nil
		}
		return end + 1, nil
	}
	return 0, nil
}

// StateCutoff includes states >= the fixed index.
type StateCutoff int

func (c StateCutoff) Select(intensities, _ []float64) (int, error) {
	k := int(c)
	if k < 0 || k >= len(intensities) {
		return 0, fmt.Errorf("cutoff state D%d out of range 0..%d", k, len(intensities)-1)
	}
	return k, nil
}

// MZCutoff maps a target m/z to the nearest state.
type MZCutoff float64

func (c MZCutoff) Select(_, stateMZ []float64) (int, error) {
	if len(stateMZ) == 0 {
		return 0, fmt.Errorf("cutoff m/z %.4f: no states", float64(c))
	}
	best, bestDist := 0, math.Inf(1)
	for k, mz := range stateMZ {
		if d := math.Abs(mz - float64(c)); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best, nil
}

// ParseCutoff maps a user cutoff spec to a strategy: "" or "auto" for the
// heuristic, "D<int>" for a fixed state, a plain number for a target m/z.
func ParseCutoff(s string) (CutoffStrategy, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "auto") {
		return AutoCutoff{}, nil
	}
	if strings.HasPrefix(s, "D") {
		k, err := strconv.Atoi(s[1:])
		if err != nil || k < 0 {
			return nil, fmt.Errorf("cutoff %q: want auto, D<int> or an m/z value", s)
		}
		return StateCutoff(k), nil
	}
	mz, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("cutoff %q: want auto, D<int> or an m/z value", s)
	}
	return MZCutoff(mz), nil
}
