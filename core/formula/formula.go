// core/formula/formula.go
// Molecular formula parsing and deuteration-state bookkeeping.
//
// A formula string encodes the fully deuterated compound, e.g. "C12HD8N" or
// "C12H[2H]8N". Supported syntax:
//
//	C6H5OH        element + count
//	CD4           D as shorthand for [2H]
//	[13C]CH3D3    bracketed fixed isotope
//	Al(OH)3       parenthesised group with multiplier
//
// A parsed Formula is immutable; state/arithmetic helpers return new values.

package formula

import (
	"errors"
	"fmt"
	"strings"

	"deuter-core/elements"
)

// ErrNoDeuterium is returned by ParseDeuterated for deuterium-free formulas.
var ErrNoDeuterium = errors.New("formula contains no deuterium")

// ParseError reports malformed formula syntax with the offending position.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("formula %q: %s at offset %d", e.Input, e.Msg, e.Pos)
}

// Component is one (element, isotope) entry of a composition.
// MassNumber 0 means natural isotopic abundance.
type Component struct {
	Symbol     string
	MassNumber int
	Count      int
}

// IsDeuterium reports whether the component is fixed 2H.
func (c Component) IsDeuterium() bool { return c.Symbol == "H" && c.MassNumber == 2 }

// Formula is an ordered, immutable element-isotope composition.
type Formula struct {
	comps []Component
	nd    int     // deuterium count
	mono  float64 // monoisotopic mass, Da
}

// Parse parses a molecular formula. Deuterium is optional here; use
// ParseDeuterated for the compound under study.
func Parse(s string) (*Formula, error) {
	p := parser{in: s}
	comps, err := p.parseGroup(true)
	if err != nil {
		return nil, err
	}
	if len(comps) == 0 {
		return nil, &ParseError{Input: s, Pos: 0, Msg: "empty formula"}
	}
	return newFormula(comps)
}

// ParseDeuterated parses a formula and requires at least one deuterium site.
func ParseDeuterated(s string) (*Formula, error) {
	f, err := Parse(s)
	if err != nil {
		return nil, err
	}
	if f.nd == 0 {
		return nil, fmt.Errorf("formula %q: %w", s, ErrNoDeuterium)
	}
	return f, nil
}

// newFormula merges duplicate components (first-appearance order), derives the
// deuterium count and the monoisotopic mass.
func newFormula(comps []Component) (*Formula, error) {
	merged := make([]Component, 0, len(comps))
	for _, c := range comps {
		found := false
		for i := range merged {
			if merged[i].Symbol == c.Symbol && merged[i].MassNumber == c.MassNumber {
				merged[i].Count += c.Count
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, c)
		}
	}

	f := &Formula{comps: merged}
	for _, c := range merged {
		el, ok := elements.Lookup(c.Symbol)
		if !ok {
			return nil, fmt.Errorf("formula: unknown element %q", c.Symbol)
		}
		var m float64
		if c.MassNumber == 0 {
			m = el.Principal().Mass
		} else {
			iso, ok := el.Isotope(c.MassNumber)
			if !ok {
				return nil, fmt.Errorf("formula: no isotope %d of %s", c.MassNumber, c.Symbol)
			}
			m = iso.Mass
		}
		f.mono += m * float64(c.Count)
		if c.IsDeuterium() {
			f.nd += c.Count
		}
	}
	return f, nil
}

// Composition returns a copy of the ordered element-isotope components.
func (f *Formula) Composition() []Component {
	return append([]Component(nil), f.comps...)
}

// DeuteriumCount returns n, the number of deuterium substitution sites.
func (f *Formula) DeuteriumCount() int { return f.nd }

// MonoisotopicMass is the mass with every element at its principal isotope
// and every fixed isotope as written.
func (f *Formula) MonoisotopicMass() float64 { return f.mono }

// StateMass returns the monoisotopic mass of deuteration state k, obtained by
// replacing n-k deuteriums with protium.
func (f *Formula) StateMass(k int) (float64, error) {
	if k < 0 || k > f.nd {
		return 0, fmt.Errorf("formula: state %d out of range 0..%d", k, f.nd)
	}
	return f.mono - float64(f.nd-k)*elements.DeuteriumShift, nil
}

// AtState returns the isotopologue formula of deuteration state k: n-k of the
// deuteriums are swapped for protium. AtState(n) returns the receiver.
func (f *Formula) AtState(k int) (*Formula, error) {
	if k < 0 || k > f.nd {
		return nil, fmt.Errorf("formula: state %d out of range 0..%d", k, f.nd)
	}
	if k == f.nd {
		return f, nil
	}
	swap := f.nd - k
	comps := make([]Component, 0, len(f.comps)+1)
	for _, c := range f.comps {
		if c.IsDeuterium() {
			c.Count -= swap
			if c.Count > 0 {
				comps = append(comps, c)
			}
			comps = append(comps, Component{Symbol: "H", Count: swap})
			continue
		}
		comps = append(comps, c)
	}
	return newFormula(comps)
}

// Multiply returns the formula repeated n times (the nM of adduct specs).
func (f *Formula) Multiply(n int) (*Formula, error) {
	if n < 1 {
		return nil, fmt.Errorf("formula: multiplier %d < 1", n)
	}
	comps := f.Composition()
	for i := range comps {
		comps[i].Count *= n
	}
	return newFormula(comps)
}

// Add returns the union of two compositions.
func (f *Formula) Add(other *Formula) (*Formula, error) {
	return newFormula(append(f.Composition(), other.comps...))
}

// Subtract removes other's atoms, erroring if any element would go negative.
func (f *Formula) Subtract(other *Formula) (*Formula, error) {
	comps := f.Composition()
	for _, oc := range other.comps {
		need := oc.Count
		for i := range comps {
			if comps[i].Symbol == oc.Symbol && comps[i].MassNumber == oc.MassNumber {
				if comps[i].Count < need {
					return nil, fmt.Errorf("formula: cannot remove %s%d, only %d present",
						oc.Symbol, need, comps[i].Count)
				}
				comps[i].Count -= need
				need = 0
				break
			}
		}
		if need > 0 {
			return nil, fmt.Errorf("formula: cannot remove absent element %s", oc.Symbol)
		}
	}
	kept := comps[:0]
	for _, c := range comps {
		if c.Count > 0 {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return nil, errors.New("formula: subtraction leaves no atoms")
	}
	return newFormula(kept)
}

// String renders the composition with D for fixed 2H and [xX] for other
// fixed isotopes. Counts of 1 are omitted.
func (f *Formula) String() string {
	var sb strings.Builder
	for _, c := range f.comps {
		switch {
		case c.IsDeuterium():
			sb.WriteString("D")
		case c.MassNumber != 0:
			fmt.Fprintf(&sb, "[%d%s]", c.MassNumber, c.Symbol)
		default:
			sb.WriteString(c.Symbol)
		}
		if c.Count != 1 {
			fmt.Fprintf(&sb, "%d", c.Count)
		}
	}
	return sb.String()
}
