package deuteration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoCutoff(t *testing.T) {
	cases := []struct {
		name string
		in   []float64
		want int
	}{
		{
			// Leading dead zone, then a rising envelope: skip past the
			// whole sub-1% run.
			name: "flat start",
			in:   []float64{0.1, 0.2, 0.5, 0.9, 2, 50, 100},
			want: 4,
		},
		{
			name: "exact pair",
			in:   []float64{0.5, 0.5, 30, 100, 60},
			want: 2,
		},
		{
			// No two consecutive states below 1% of max.
			name: "no dead pair",
			in:   []float64{5, 0.5, 5, 100, 80},
			want: 0,
		},
		{
			name: "all included",
			in:   []float64{10, 20, 30, 100},
			want: 0,
		},
		{
			// Dead pair in the middle, after real signal.
			name: "interior pair",
			in:   []float64{50, 0.1, 0.1, 100, 70},
			want: 3,
		},
		{
			// The dead run reaches the top state: nothing would remain,
			// so everything stays included.
			name: "dead top",
			in:   []float64{100, 50, 0.1, 0.1},
			want: 0,
		},
		{
			name: "all zero",
			in:   []float64{0, 0, 0, 0},
			want: 0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AutoCutoff{}.Select(tc.in, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStateCutoff(t *testing.T) {
	in := []float64{1, 2, 3, 4}

	got, err := StateCutoff(2).Select(in, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	_, err = StateCutoff(4).Select(in, nil)
	assert.Error(t, err)
	_, err = StateCutoff(-1).Select(in, nil)
	assert.Error(t, err)
}

func TestMZCutoff(t *testing.T) {
	stateMZ := []float64{100.0, 101.0, 102.0, 103.0}

	got, err := MZCutoff(101.8).Select(nil, stateMZ)
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	got, err = MZCutoff(50.0).Select(nil, stateMZ)
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	_, err = MZCutoff(101.0).Select(nil, nil)
	assert.Error(t, err)
}

func TestParseCutoff(t *testing.T) {
	s, err := ParseCutoff("auto")
	require.NoError(t, err)
	assert.IsType(t, AutoCutoff{}, s)

	s, err = ParseCutoff("")
	require.NoError(t, err)
	assert.IsType(t, AutoCutoff{}, s)

	s, err = ParseCutoff("D7")
	require.NoError(t, err)
	assert.Equal(t, StateCutoff(7), s)

	s, err = ParseCutoff("172.5")
	require.NoError(t, err)
	assert.Equal(t, MZCutoff(172.5), s)

	for _, bad := range []string{"Dx", "D-1", "seven", "D"} {
		_, err = ParseCutoff(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
