package formula

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deuter-core/elements"
)

func TestParse_Composition(t *testing.T) {
	f, err := Parse("C12HD8N")
	require.NoError(t, err)

	comps := f.Composition()
	require.Len(t, comps, 4)
	assert.Equal(t, Component{Symbol: "C", Count: 12}, comps[0])
	assert.Equal(t, Component{Symbol: "H", Count: 1}, comps[1])
	assert.Equal(t, Component{Symbol: "H", MassNumber: 2, Count: 8}, comps[2])
	assert.Equal(t, Component{Symbol: "N", Count: 1}, comps[3])

	assert.Equal(t, 8, f.DeuteriumCount())
	assert.InDelta(t, 175.1237, f.MonoisotopicMass(), 1e-3)
	assert.Equal(t, "C12HD8N", f.String())
}

func TestParse_BracketIsotopeEqualsD(t *testing.T) {
	a, err := Parse("CD4")
	require.NoError(t, err)
	b, err := Parse("C[2H]4")
	require.NoError(t, err)
	assert.Equal(t, a.Composition(), b.Composition())
	assert.Equal(t, a.MonoisotopicMass(), b.MonoisotopicMass())
}

func TestParse_Groups(t *testing.T) {
	// DMSO-d6 written with a group multiplier.
	f, err := Parse("(CD3)2SO")
	require.NoError(t, err)
	assert.Equal(t, 6, f.DeuteriumCount())

	flat, err := Parse("C2D6SO")
	require.NoError(t, err)
	assert.InDelta(t, flat.MonoisotopicMass(), f.MonoisotopicMass(), 1e-9)
}

func TestParse_Errors(t *testing.T) {
	cases := []string{
		"",
		"C12(",
		"C12)",
		"(CD3",
		"X5",       // unknown element
		"[H]2",     // missing mass number
		"[2H",      // unclosed bracket
		"C0",       // zero count
		"c12",      // lowercase start
		"C12 HD8N", // whitespace
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.Error(t, err, "input %q", in)
		})
	}

	var perr *ParseError
	_, err := Parse("C12&")
	require.Error(t, err)
	if errors.As(err, &perr) {
		assert.Equal(t, "C12&", perr.Input)
	}
}

func TestParseDeuterated_RequiresDeuterium(t *testing.T) {
	_, err := ParseDeuterated("CH4")
	assert.ErrorIs(t, err, ErrNoDeuterium)

	f, err := ParseDeuterated("CHD3")
	require.NoError(t, err)
	assert.Equal(t, 3, f.DeuteriumCount())
}

func TestStateMass_ShiftPerState(t *testing.T) {
	f, err := ParseDeuterated("C12HD8N")
	require.NoError(t, err)

	m0, err := f.StateMass(0)
	require.NoError(t, err)
	for k := 0; k <= f.DeuteriumCount(); k++ {
		mk, err := f.StateMass(k)
		require.NoError(t, err)
		assert.InDelta(t, m0+float64(k)*elements.DeuteriumShift, mk, 0.01, "state %d", k)
	}
	mn, err := f.StateMass(f.DeuteriumCount())
	require.NoError(t, err)
	assert.Equal(t, f.MonoisotopicMass(), mn)

	_, err = f.StateMass(9)
	assert.Error(t, err)
	_, err = f.StateMass(-1)
	assert.Error(t, err)
}

func TestAtState(t *testing.T) {
	f, err := ParseDeuterated("C12HD8N")
	require.NoError(t, err)

	s3, err := f.AtState(3)
	require.NoError(t, err)
	assert.Equal(t, 3, s3.DeuteriumCount())

	var protium int
	for _, c := range s3.Composition() {
		if c.Symbol == "H" && c.MassNumber == 0 {
			protium = c.Count
		}
	}
	assert.Equal(t, 1+5, protium, "five deuteriums swapped for protium")

	want, err := f.StateMass(3)
	require.NoError(t, err)
	assert.InDelta(t, want, s3.MonoisotopicMass(), 1e-9)

	sn, err := f.AtState(8)
	require.NoError(t, err)
	assert.Same(t, f, sn)

	s0, err := f.AtState(0)
	require.NoError(t, err)
	assert.Equal(t, 0, s0.DeuteriumCount())
	assert.Equal(t, "C12H9N", s0.String())
}

func TestArithmetic(t *testing.T) {
	f, err := Parse("C2D6SO")
	require.NoError(t, err)

	double, err := f.Multiply(2)
	require.NoError(t, err)
	assert.Equal(t, 12, double.DeuteriumCount())

	h, err := Parse("H")
	require.NoError(t, err)
	_, err = f.Subtract(h)
	assert.Error(t, err, "no protium to remove")

	d, err := Parse("D")
	require.NoError(t, err)
	less, err := f.Subtract(d)
	require.NoError(t, err)
	assert.Equal(t, 5, less.DeuteriumCount())

	more, err := f.Add(h)
	require.NoError(t, err)
	assert.InDelta(t, f.MonoisotopicMass()+elements.ProtiumMass, more.MonoisotopicMass(), 1e-9)
}
