package tdp

import (
	"context"
	"testing"

	"goari/adapters/rng"
	"goari/adapters/stats/permutation"
	"goari/domain/ari"
	"goari/domain/core"
	"goari/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// three locations, observed column plus three realizations
func handcraftedDistribution() *mat.Dense {
	return mat.NewDense(3, 4, []float64{
		0.01, 0.3, 0.2, 0.1,
		0.02, 0.6, 0.5, 0.4,
		0.6, 0.9, 0.8, 0.7,
	})
}

func TestPermutationCalibration(t *testing.T) {
	o, err := NewPermutation(handcraftedDistribution(), ari.Shape{3}, 0.5, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.2, o.Lambda(), 1e-12)
	crit := o.CriticalValues()
	require.Len(t, crit, 3)
	assert.InDelta(t, 0.2, crit[0], 1e-12)
	assert.InDelta(t, 0.4, crit[1], 1e-12)
	assert.InDelta(t, 0.6, crit[2], 1e-12)
	assert.Equal(t, []float64{0.01, 0.02, 0.6}, o.PValues().Values)

	tests := []struct {
		name string
		idx  []int
		want float64
	}{
		{"all locations", []int{0, 1, 2}, 2.0 / 3.0},
		{"strong pair", []int{0, 1}, 1},
		{"weak location", []int{2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ari.NewMask(ari.Shape{3}, tt.idx)
			require.NoError(t, err)
			got, err := o.TrueDiscoveryProportion(m)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestPermutationShift(t *testing.T) {
	o, err := NewPermutation(handcraftedDistribution(), ari.Shape{3}, 0.5, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.6, o.Lambda(), 1e-12)
	crit := o.CriticalValues()
	assert.InDelta(t, 0.0, crit[0], 1e-12)
	assert.InDelta(t, 0.4, crit[1], 1e-12)
	assert.InDelta(t, 0.8, crit[2], 1e-12)

	m, err := ari.NewMask(ari.Shape{3}, []int{0, 1, 2})
	require.NoError(t, err)
	got, err := o.TrueDiscoveryProportion(m)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, got, 1e-12)
}

func TestPermutationRejectsInvalidInput(t *testing.T) {
	dist := handcraftedDistribution()
	_, err := NewPermutation(dist, ari.Shape{3}, 0.05, -1)
	assert.ErrorIs(t, err, core.ErrInvalidShift)
	_, err = NewPermutation(dist, ari.Shape{3}, 0.05, 3)
	assert.ErrorIs(t, err, core.ErrInvalidShift)
	_, err = NewPermutation(dist, ari.Shape{3}, -0.05, 0)
	assert.True(t, core.IsInvalidParameter(err))
	_, err = NewPermutation(dist, ari.Shape{2, 2}, 0.05, 0)
	assert.True(t, core.IsInvalidParameter(err))
}

func TestPermutationBoundsStayInRange(t *testing.T) {
	kit := testkit.NewTestKit(9)
	x := testkit.AddEffect(kit.Normal(25, 40), testkit.Block(0, 10), 1.5)
	samples, err := ari.NewSamples(ari.Shape{40}, x)
	require.NoError(t, err)

	engine := permutation.NewEngine(rng.NewSeededAdapter(), 2)
	dist, err := engine.Distribution(context.Background(), samples, permutation.Options{Permutations: 200, Seed: 4})
	require.NoError(t, err)

	o, err := NewPermutation(dist, samples.Shape, 0.05, 0)
	require.NoError(t, err)
	for from := 0; from < 40; from += 5 {
		m, err := ari.NewMask(samples.Shape, testkit.Block(from, 40))
		require.NoError(t, err)
		tdp, err := o.TrueDiscoveryProportion(m)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, tdp, 0.0)
		assert.LessOrEqual(t, tdp, 1.0)
	}

	signal, err := ari.NewMask(samples.Shape, testkit.Block(0, 10))
	require.NoError(t, err)
	tdp, err := o.TrueDiscoveryProportion(signal)
	require.NoError(t, err)
	assert.Greater(t, tdp, 0.5)
}
