// core/adduct/adduct.go
// Adduct parsing and m/z resolution.
//
// An adduct spec has the form [nM+nX-nY]n+ where M is the base molecule and
// X, Y are gained / lost fragments:
//
//	[M]+  [M+H]+  [M-H]-  [2M+H]+  [M+H2]2+  [M+K-2H]-
//
// Apply builds the ionised composition from a base formula; MZ converts a
// neutral base mass to the observed m/z, including the electron mass.

package adduct

import (
	"errors"
	"fmt"
	"regexp"

	"deuter-core/elements"
	"deuter-core/formula"
)

// ErrBadAdduct is wrapped by Parse for specs that do not match the grammar.
var ErrBadAdduct = errors.New("adduct must be in the format [nM+X-Y]n+")

var (
	reAdduct = regexp.MustCompile(`^\[(\d*)M(.*)\](\d+)?([+-])$`)
	reTerm   = regexp.MustCompile(`([+-])(\d*)([A-Za-z][A-Za-z0-9\[\]]*)`)
)

// term is one gain or loss fragment of the spec.
type term struct {
	gain  bool
	count int
	frag  *formula.Formula
}

// Adduct is a parsed ionisation spec.
type Adduct struct {
	Spec    string
	NumBase int // n in [nM...]
	Charge  int // signed
	terms   []term
	delta   float64 // summed fragment mass, signed, Da
}

// Parse parses an adduct spec string.
func Parse(spec string) (*Adduct, error) {
	m := reAdduct.FindStringSubmatch(spec)
	if m == nil {
		return nil, fmt.Errorf("%q: %w", spec, ErrBadAdduct)
	}
	a := &Adduct{Spec: spec, NumBase: 1, Charge: 1}
	if m[1] != "" {
		fmt.Sscan(m[1], &a.NumBase)
		if a.NumBase < 1 {
			return nil, fmt.Errorf("%q: %w", spec, ErrBadAdduct)
		}
	}
	if m[3] != "" {
		fmt.Sscan(m[3], &a.Charge)
	}
	if m[4] == "-" {
		a.Charge = -a.Charge
	}

	body := m[2]
	covered := 0
	for _, tm := range reTerm.FindAllStringSubmatch(body, -1) {
		covered += len(tm[0])
		t := term{gain: tm[1] == "+", count: 1}
		if tm[2] != "" {
			fmt.Sscan(tm[2], &t.count)
			if t.count < 1 {
				return nil, fmt.Errorf("%q: %w", spec, ErrBadAdduct)
			}
		}
		frag, err := formula.Parse(tm[3])
		if err != nil {
			return nil, fmt.Errorf("%q: bad fragment %q: %w", spec, tm[3], ErrBadAdduct)
		}
		t.frag = frag
		sign := 1.0
		if !t.gain {
			sign = -1.0
		}
		a.delta += sign * float64(t.count) * frag.MonoisotopicMass()
		a.terms = append(a.terms, t)
	}
	if covered != len(body) {
		return nil, fmt.Errorf("%q: %w", spec, ErrBadAdduct)
	}
	return a, nil
}

// Apply builds the adduct composition: base repeated NumBase times with every
// gain added and every loss removed. Errors if a loss removes atoms the base
// does not carry (e.g. [M-H]- on a fully exchanged compound without protium).
func (a *Adduct) Apply(base *formula.Formula) (*formula.Formula, error) {
	f, err := base.Multiply(a.NumBase)
	if err != nil {
		return nil, err
	}
	for _, t := range a.terms {
		frag, err := t.frag.Multiply(t.count)
		if err != nil {
			return nil, err
		}
		if t.gain {
			f, err = f.Add(frag)
		} else {
			f, err = f.Subtract(frag)
		}
		if err != nil {
			return nil, fmt.Errorf("adduct %q: %w", a.Spec, err)
		}
	}
	return f, nil
}

// MassDelta is the signed summed mass of the gain/loss fragments in Da.
func (a *Adduct) MassDelta() float64 { return a.delta }

// MZ maps a neutral base monoisotopic mass to the observed m/z:
// (n*M + delta - z*me) / |z|.
func (a *Adduct) MZ(baseMass float64) float64 {
	z := float64(a.Charge)
	m := float64(a.NumBase)*baseMass + a.delta - z*elements.ElectronMass
	if z < 0 {
		z = -z
	}
	return m / z
}

func (a *Adduct) String() string { return a.Spec }
