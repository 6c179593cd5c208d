// core/elements/elements.go
// Isotopic reference data for the elements handled by the calculator.
// Masses in Da (unified atomic mass units), abundances as mole fractions.
//
// Values follow the CIAAW/NIST 2021 compilation of atomic masses and
// representative isotopic abundances, truncated to the elements that occur in
// practice in deuterated small molecules (organics, common salts, halogens).
//
// This package has no deps and no state; everything above it can import it.

package elements

import "fmt"

// Electron rest mass in Da. Applied once per elementary charge when
// converting a neutral mass to m/z.
const ElectronMass = 0.000548579909

// Isotope is a single nuclide of an element.
type Isotope struct {
	MassNumber int
	Mass       float64 // Da
	Abundance  float64 // mole fraction, 0 for synthetic/trace
}

// Element groups the natural isotopes of one element, lightest first.
// Abundances sum to 1 within rounding of the source table.
type Element struct {
	Symbol   string
	Number   int
	Isotopes []Isotope
}

// Principal returns the most abundant isotope.
func (e Element) Principal() Isotope {
	best := e.Isotopes[0]
	for _, iso := range e.Isotopes[1:] {
		if iso.Abundance > best.Abundance {
			best = iso
		}
	}
	return best
}

// Isotope returns the nuclide with the given mass number.
func (e Element) Isotope(massNumber int) (Isotope, bool) {
	for _, iso := range e.Isotopes {
		if iso.MassNumber == massNumber {
			return iso, true
		}
	}
	return Isotope{}, false
}

var table = map[string]Element{
	"H": {"H", 1, []Isotope{
		{1, 1.00782503207, 0.999885},
		{2, 2.01410177785, 0.000115},
	}},
	"B": {"B", 5, []Isotope{
		{10, 10.0129370, 0.199},
		{11, 11.0093054, 0.801},
	}},
	"C": {"C", 6, []Isotope{
		{12, 12.0000000, 0.9893},
		{13, 13.0033548378, 0.0107},
	}},
	"N": {"N", 7, []Isotope{
		{14, 14.0030740048, 0.99636},
		{15, 15.0001088982, 0.00364},
	}},
	"O": {"O", 8, []Isotope{
		{16, 15.9949146196, 0.99757},
		{17, 16.9991317, 0.00038},
		{18, 17.9991610, 0.00205},
	}},
	"F": {"F", 9, []Isotope{
		{19, 18.99840322, 1.0},
	}},
	"Na": {"Na", 11, []Isotope{
		{23, 22.9897692809, 1.0},
	}},
	"Si": {"Si", 14, []Isotope{
		{28, 27.9769265325, 0.92223},
		{29, 28.9764947, 0.04685},
		{30, 29.97377017, 0.03092},
	}},
	"P": {"P", 15, []Isotope{
		{31, 30.97376163, 1.0},
	}},
	"S": {"S", 16, []Isotope{
		{32, 31.97207100, 0.9499},
		{33, 32.97145876, 0.0075},
		{34, 33.96786690, 0.0425},
		{36, 35.96708076, 0.0001},
	}},
	"Cl": {"Cl", 17, []Isotope{
		{35, 34.96885268, 0.7576},
		{37, 36.96590259, 0.2424},
	}},
	"K": {"K", 19, []Isotope{
		{39, 38.96370668, 0.932581},
		{40, 39.96399848, 0.000117},
		{41, 40.96182576, 0.067302},
	}},
	"Br": {"Br", 35, []Isotope{
		{79, 78.9183371, 0.5069},
		{81, 80.9162906, 0.4931},
	}},
	"I": {"I", 53, []Isotope{
		{127, 126.904473, 1.0},
	}},
}

// Lookup returns the element for a symbol ("C", "Cl", ...).
func Lookup(symbol string) (Element, bool) {
	e, ok := table[symbol]
	return e, ok
}

// MustLookup is Lookup for symbols known to exist (internal tables, tests).
func MustLookup(symbol string) Element {
	e, ok := table[symbol]
	if !ok {
		panic(fmt.Sprintf("elements: unknown symbol %q", symbol))
	}
	return e
}

// Protium and Deuterium masses, used for deuteration state shifts.
var (
	ProtiumMass   = table["H"].Isotopes[0].Mass
	DeuteriumMass = table["H"].Isotopes[1].Mass
)

// DeuteriumShift is mass(2H) - mass(1H): the per-site mass gain of one
// deuterium substitution.
var DeuteriumShift = DeuteriumMass - ProtiumMass
