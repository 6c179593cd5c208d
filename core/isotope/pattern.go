// core/isotope/pattern.go
// Theoretical isotope distributions by iterative convolution.
//
// The distribution of a formula is built by starting from a single zero-mass
// peak and convolving in one atom at a time. After every convolution step,
// entries below pruneThreshold are dropped and entries closer than mergeWidth
// are merged (abundance-weighted mean mass), which bounds growth to a few
// dozen peaks for typical small molecules while keeping m/z accurate to well
// under 1e-4 Da. Generation is a pure function of (formula, charge): the same
// inputs always reproduce the same pattern.

package isotope

import (
	"errors"
	"math"
	"sort"

	"deuter-core/elements"
	"deuter-core/formula"
)

const (
	// pruneThreshold drops negligible tails during convolution.
	pruneThreshold = 1e-8
	// minFraction drops final peaks below this fraction of the total.
	minFraction = 1e-4
	// mergeWidth combines peaks that the instrument cannot separate from
	// rounding of near-degenerate isotopologues. Kept well below the 1.00336
	// (13C) vs 1.00628 (2H) spacing so fine structure survives.
	mergeWidth = 1e-5
)

// Peak is one line of an isotope pattern.
type Peak struct {
	MZ        float64
	Abundance float64
}

// Pattern is the ordered isotope distribution of one composition.
// MZ ascends strictly; abundances sum to 1.
type Pattern struct {
	Peaks []Peak
	Mono  float64 // principal-isotope m/z
}

// BaseMZ returns the m/z of the most abundant peak.
func (p Pattern) BaseMZ() float64 {
	best := 0
	for i, pk := range p.Peaks {
		if pk.Abundance > p.Peaks[best].Abundance {
			best = i
		}
	}
	return p.Peaks[best].MZ
}

// Span returns the lowest and highest m/z of the pattern.
func (p Pattern) Span() (lo, hi float64) {
	return p.Peaks[0].MZ, p.Peaks[len(p.Peaks)-1].MZ
}

// Generate computes the isotope pattern of f observed at the given charge.
// charge 0 is treated as a neutral (mass spectrum rather than m/z).
func Generate(f *formula.Formula, charge int) (Pattern, error) {
	dist := []Peak{{MZ: 0, Abundance: 1}}
	for _, c := range f.Composition() {
		el, ok := elements.Lookup(c.Symbol)
		if !ok {
			return Pattern{}, errors.New("isotope: unknown element " + c.Symbol)
		}
		if c.MassNumber != 0 {
			// Fixed isotope: a pure mass shift, no spread.
			iso, ok := el.Isotope(c.MassNumber)
			if !ok {
				return Pattern{}, errors.New("isotope: unknown nuclide of " + c.Symbol)
			}
			for i := range dist {
				dist[i].MZ += iso.Mass * float64(c.Count)
			}
			continue
		}
		if len(el.Isotopes) == 1 {
			for i := range dist {
				dist[i].MZ += el.Isotopes[0].Mass * float64(c.Count)
			}
			continue
		}
		for i := 0; i < c.Count; i++ {
			dist = convolve(dist, el.Isotopes)
		}
	}

	dist = finalize(dist, charge)
	if len(dist) == 0 {
		return Pattern{}, errors.New("isotope: empty distribution")
	}

	mono := f.MonoisotopicMass()
	return Pattern{Peaks: dist, Mono: toMZ(mono, charge)}, nil
}

// convolve folds one multi-isotope atom into the running distribution.
func convolve(dist []Peak, isotopes []elements.Isotope) []Peak {
	out := make([]Peak, 0, len(dist)*len(isotopes))
	for _, d := range dist {
		for _, iso := range isotopes {
			p := d.Abundance * iso.Abundance
			if p < pruneThreshold {
				continue
			}
			out = append(out, Peak{MZ: d.MZ + iso.Mass, Abundance: p})
		}
	}
	return mergeSorted(out)
}

// mergeSorted sorts by mass and merges peaks closer than mergeWidth using the
// abundance-weighted mean mass. Deterministic: ties cannot occur after the
// merge because spacing is enforced.
func mergeSorted(peaks []Peak) []Peak {
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].MZ < peaks[j].MZ })
	out := peaks[:0]
	for _, p := range peaks {
		if n := len(out); n > 0 && p.MZ-out[n-1].MZ < mergeWidth {
			prev := out[n-1]
			total := prev.Abundance + p.Abundance
			out[n-1] = Peak{
				MZ:        (prev.MZ*prev.Abundance + p.MZ*p.Abundance) / total,
				Abundance: total,
			}
			continue
		}
		out = append(out, p)
	}
	return out
}

// finalize converts masses to m/z, drops sub-minFraction peaks and
// renormalises the abundances to sum exactly to 1.
func finalize(dist []Peak, charge int) []Peak {
	total := 0.0
	for _, p := range dist {
		total += p.Abundance
	}
	if total == 0 {
		return nil
	}
	out := dist[:0]
	for _, p := range dist {
		if p.Abundance/total < minFraction {
			continue
		}
		out = append(out, Peak{MZ: toMZ(p.MZ, charge), Abundance: p.Abundance})
	}
	total = 0.0
	for _, p := range out {
		total += p.Abundance
	}
	for i := range out {
		out[i].Abundance /= total
	}
	return out
}

// toMZ converts a neutral mass to m/z at the given signed charge,
// accounting for gained or lost electrons.
func toMZ(mass float64, charge int) float64 {
	if charge == 0 {
		return mass
	}
	z := float64(charge)
	return (mass - z*elements.ElectronMass) / math.Abs(z)
}
