package deuteration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_ProbabilitiesSumToOne(t *testing.T) {
	cases := []struct {
		name   string
		in     []float64
		cutoff int
	}{
		{"no cutoff", []float64{1, 2, 3, 4, 10}, 0},
		{"with cutoff", []float64{0.1, 0.01, 3, 4, 10}, 2},
		{"single state left", []float64{0, 0, 5}, 2},
		{"ragged", []float64{0.3, 0, 7.5, 0, 2.25, 11}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			agg, err := Aggregate(tc.in, tc.cutoff, 0)
			require.NoError(t, err)

			var sum float64
			for _, p := range agg.Probabilities {
				sum += p
			}
			assert.InDelta(t, 1.0, sum, 1e-6)
			assert.Len(t, agg.States, len(tc.in)-tc.cutoff)
			assert.Equal(t, tc.cutoff, agg.States[0])
			assert.False(t, agg.LowConfidence)
		})
	}
}

func TestAggregate_Deuteration(t *testing.T) {
	// All signal in the top state of 4 sites: 100%.
	agg, err := Aggregate([]float64{0, 0, 0, 0, 7}, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, agg.Deuteration, 1e-9)

	// Even split between D2 and D4 of 4 sites: 75%.
	agg, err = Aggregate([]float64{0, 0, 5, 0, 5}, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 75.0, agg.Deuteration, 1e-9)

	// Excluded states do not drag the estimate down.
	agg, err = Aggregate([]float64{100, 0, 0, 0, 5}, 4, 0)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, agg.Deuteration, 1e-9)
}

func TestAggregate_Uncertainty(t *testing.T) {
	agg, err := Aggregate([]float64{0, 0, 10}, 0, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, agg.Deuteration, 1e-9)
	assert.InDelta(t, 10.0, agg.Uncertainty, 1e-9)

	agg, err = Aggregate([]float64{0, 0, 10}, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, agg.Uncertainty)
}

func TestAggregate_NoSignal(t *testing.T) {
	// Zero intensity above the cutoff: flat distribution, flagged, no NaNs.
	agg, err := Aggregate([]float64{5, 0, 0, 0}, 1, 0)
	require.NoError(t, err)
	assert.True(t, agg.LowConfidence)

	var sum float64
	for _, p := range agg.Probabilities {
		assert.False(t, p != p, "NaN probability")
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestAggregate_Errors(t *testing.T) {
	_, err := Aggregate([]float64{1}, 0, 0)
	assert.Error(t, err, "single state")

	_, err = Aggregate([]float64{1, 2, 3}, 3, 0)
	assert.Error(t, err, "cutoff past top state")

	_, err = Aggregate([]float64{1, -2, 3}, 0, 0)
	assert.Error(t, err, "negative intensity")
}
