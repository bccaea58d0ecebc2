package permutation

import (
	"testing"

	"goari/domain/ari"
	"goari/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestWelchMatchesPooledForBalancedGroups(t *testing.T) {
	a := mat.NewDense(3, 1, []float64{1, 2, 3})
	b := mat.NewDense(3, 1, []float64{4, 5, 6})

	welch, err := WelchTTest(ari.TailTwoSided)([]*mat.Dense{a, b})
	require.NoError(t, err)
	pooled, err := TTest(ari.TailTwoSided)([]*mat.Dense{a, b})
	require.NoError(t, err)
	assert.InDelta(t, pooled[0], welch[0], 1e-12)
	assert.InDelta(t, 0.02131, welch[0], 1e-4)
}

func TestWelchPenalizesUnequalVariances(t *testing.T) {
	a := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	b := mat.NewDense(2, 1, []float64{10, 20})

	welch, err := WelchTTest(ari.TailTwoSided)([]*mat.Dense{a, b})
	require.NoError(t, err)
	pooled, err := TTest(ari.TailTwoSided)([]*mat.Dense{a, b})
	require.NoError(t, err)
	// fewer effective degrees of freedom and a larger standard error
	assert.Greater(t, welch[0], pooled[0])
	assert.Less(t, welch[0], 1.0)

	greater, err := WelchTTest(ari.TailGreater)([]*mat.Dense{a, b})
	require.NoError(t, err)
	less, err := WelchTTest(ari.TailLess)([]*mat.Dense{a, b})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, greater[0]+less[0], 1e-9)
	assert.InDelta(t, welch[0], 2*less[0], 1e-9)
}

func TestWelchConstantGroups(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 5, 1, 5})
	b := mat.NewDense(3, 2, []float64{2, 5, 2, 5, 2, 5})
	p, err := WelchTTest(ari.TailLess)([]*mat.Dense{a, b})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p[0])
	assert.InDelta(t, 0.5, p[1], 1e-12)
}

func TestWelchRejectsBadGroups(t *testing.T) {
	one := mat.NewDense(3, 1, []float64{1, 2, 3})
	_, err := WelchTTest(ari.TailTwoSided)([]*mat.Dense{one})
	assert.True(t, core.IsInvalidParameter(err))

	single := mat.NewDense(1, 1, []float64{1})
	_, err = WelchTTest(ari.TailTwoSided)([]*mat.Dense{one, single})
	assert.True(t, core.IsInvalidParameter(err))
}

func TestNamedStatFunc(t *testing.T) {
	f, err := NamedStatFunc("", ari.TailTwoSided)
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = NamedStatFunc("welch", ari.TailTwoSided)
	require.NoError(t, err)
	assert.NotNil(t, f)

	_, err = NamedStatFunc("wilcoxon", ari.TailTwoSided)
	assert.True(t, core.IsInvalidParameter(err))
}
