package permutation

import (
	"math"
	"testing"

	"goari/domain/ari"
	"goari/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestTTestOneSampleMatchesReference(t *testing.T) {
	x := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})

	// t = 4.2426 on 4 degrees of freedom
	p, err := TTest(ari.TailTwoSided)([]*mat.Dense{x})
	require.NoError(t, err)
	assert.InDelta(t, 0.01324, p[0], 1e-4)

	p, err = TTest(ari.TailGreater)([]*mat.Dense{x})
	require.NoError(t, err)
	assert.InDelta(t, 0.00662, p[0], 1e-4)

	p, err = TTest(ari.TailLess)([]*mat.Dense{x})
	require.NoError(t, err)
	assert.InDelta(t, 1-0.00662, p[0], 1e-4)
}

func TestTTestTwoSampleMatchesReference(t *testing.T) {
	a := mat.NewDense(3, 1, []float64{1, 2, 3})
	b := mat.NewDense(3, 1, []float64{4, 5, 6})

	// pooled t = -3.6742 on 4 degrees of freedom
	p, err := TTest(ari.TailTwoSided)([]*mat.Dense{a, b})
	require.NoError(t, err)
	assert.InDelta(t, 0.02131, p[0], 1e-4)

	p, err = TTest(ari.TailLess)([]*mat.Dense{a, b})
	require.NoError(t, err)
	assert.InDelta(t, 0.010655, p[0], 1e-4)
}

func TestTTestConstantColumns(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		0, 2,
		0, 2,
		0, 2,
	})
	p, err := TTest(ari.TailTwoSided)([]*mat.Dense{x})
	require.NoError(t, err)
	assert.Equal(t, 1.0, p[0])
	assert.Equal(t, 0.0, p[1])
	assert.False(t, math.IsNaN(p[0]))
}

func TestTTestRejectsBadInput(t *testing.T) {
	one := mat.NewDense(1, 3, nil)
	_, err := TTest(ari.TailTwoSided)([]*mat.Dense{one})
	assert.True(t, core.IsInvalidParameter(err))

	g := mat.NewDense(4, 3, nil)
	_, err = TTest(ari.TailTwoSided)([]*mat.Dense{g, g, g})
	assert.True(t, core.IsInvalidParameter(err))

	_, err = TTest(ari.Tail(5))([]*mat.Dense{g})
	assert.True(t, core.IsInvalidParameter(err))
}
