package tdp

import (
	"math"
	"math/rand"
	"testing"

	"goari/domain/ari"
	"goari/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referenceHommel applies Simes' test to the hardest intersection of every
// size (the k largest p-values) and returns the largest size not rejected.
func referenceHommel(p []float64, alpha float64) int {
	sorted := append([]float64(nil), p...)
	sortFloats(sorted)
	n := len(sorted)
	for k := n; k >= 1; k-- {
		rejected := false
		for j := 1; j <= k; j++ {
			if sorted[n-k+j-1] <= float64(j)*alpha/float64(k) {
				rejected = true
				break
			}
		}
		if !rejected {
			return k
		}
	}
	return 0
}

// referenceTDP is max over u of 1 - u + #{h*p <= u*alpha}, floored at zero
func referenceTDP(p []float64, h int, alpha float64) float64 {
	m := len(p)
	if h == 0 {
		return 1
	}
	best := 0.0
	for u := 1; u <= m; u++ {
		count := 0
		for _, v := range p {
			if float64(h)*v <= float64(u)*alpha {
				count++
			}
		}
		best = math.Max(best, float64(1-u+count))
	}
	return best / float64(m)
}

func sortFloats(x []float64) {
	for i := 1; i < len(x); i++ {
		for j := i; j > 0 && x[j] < x[j-1]; j-- {
			x[j], x[j-1] = x[j-1], x[j]
		}
	}
}

func mustMask(t *testing.T, shape ari.Shape, idx ...int) ari.Mask {
	t.Helper()
	m, err := ari.NewMask(shape, idx)
	require.NoError(t, err)
	return m
}

func TestParametricHandcrafted(t *testing.T) {
	p := ari.Map{Shape: ari.Shape{5}, Values: []float64{0.5, 0.01, 0.2, 0.001, 0.03}}
	o, err := NewParametric(p, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 3, o.HommelValue())
	assert.Equal(t, referenceHommel(p.Values, 0.05), o.HommelValue())

	tests := []struct {
		name string
		idx  []int
		want float64
	}{
		{"all locations", []int{0, 1, 2, 3, 4}, 0.4},
		{"three smallest", []int{1, 3, 4}, 2.0 / 3.0},
		{"two smallest", []int{1, 3}, 1},
		{"two largest", []int{0, 2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := o.TrueDiscoveryProportion(mustMask(t, p.Shape, tt.idx...))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestParametricMatchesReference(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	const alpha = 0.05
	for iter := 0; iter < 100; iter++ {
		n := 100
		p := make([]float64, n)
		for i := range p {
			p[i] = r.Float64()
			if i < 20 {
				p[i] = p[i] * 1e-3 // a block of signal
			}
			if p[i] == 0 {
				p[i] = 1e-12
			}
		}
		h := HommelValue(p, alpha)
		require.Equal(t, referenceHommel(p, alpha), h, "iteration %d", iter)

		subset := p[:10+r.Intn(80)]
		assert.InDelta(t, referenceTDP(subset, h, alpha), trueDiscoveryFraction(subset, h, alpha), 1e-5)
	}
}

func TestHommelValueEdgeCases(t *testing.T) {
	const alpha = 0.05
	const eps = 1e-6
	assert.Equal(t, 1, HommelValue([]float64{alpha + eps}, alpha))
	assert.Equal(t, 0, HommelValue([]float64{alpha - eps}, alpha))
	assert.Equal(t, 0, HommelValue([]float64{alpha - eps, 0.01, 0.02, 0.001}, alpha))
	assert.Equal(t, 4, HommelValue([]float64{0.2, 0.3, 0.9, 0.06}, alpha))
	assert.Equal(t, 0, HommelValue(nil, alpha))
}

func TestParametricAllRejected(t *testing.T) {
	p := ari.Map{Shape: ari.Shape{3}, Values: []float64{0.001, 0.002, 0.003}}
	o, err := NewParametric(p, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 0, o.HommelValue())

	got, err := o.TrueDiscoveryProportion(mustMask(t, p.Shape, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestParametricRejectsInvalidInput(t *testing.T) {
	_, err := NewParametric(ari.Map{Shape: ari.Shape{2}, Values: []float64{0, 0.5}}, 0.05)
	assert.True(t, core.IsDegenerateInput(err))

	_, err = NewParametric(ari.Map{Shape: ari.Shape{2}, Values: []float64{0.1, 0.5}}, 1.5)
	assert.True(t, core.IsInvalidParameter(err))

	_, err = NewParametric(ari.Map{Shape: ari.Shape{3}, Values: []float64{0.1, 0.5}}, 0.05)
	assert.True(t, core.IsInvalidParameter(err))

	o, err := NewParametric(ari.Map{Shape: ari.Shape{2}, Values: []float64{0.1, 0.5}}, 0.05)
	require.NoError(t, err)
	_, err = o.TrueDiscoveryProportion(mustMask(t, ari.Shape{3}, 0))
	assert.True(t, core.IsInvalidParameter(err))
	_, err = o.TrueDiscoveryProportion(mustMask(t, ari.Shape{2}))
	assert.True(t, core.IsInvalidParameter(err))
}

func TestParametricRejectsOutOfRangePValues(t *testing.T) {
	cases := map[string][]float64{
		"all negative": {-0.5, -0.2, -0.1},
		"one negative": {-0.001, 0.9, 0.95},
		"above one":    {3.2, 7.5},
		"positive inf": {0.2, math.Inf(1)},
		"nan":          {0.1, math.NaN()},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			p := ari.Map{Shape: ari.Shape{len(values)}, Values: values}
			o, err := NewParametric(p, 0.05)
			require.Error(t, err)
			assert.Nil(t, o)
			assert.True(t, core.IsDegenerateInput(err))
			assert.ErrorIs(t, err, core.ErrInvalidPValue)
		})
	}

	o, err := NewParametric(ari.Map{Shape: ari.Shape{2}, Values: []float64{1, 1}}, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 2, o.HommelValue())
}

func TestCheckRangeSurfacesImpossibleProportion(t *testing.T) {
	for _, v := range []float64{-0.1, 1.5, math.NaN()} {
		_, err := checkRange(v)
		assert.True(t, core.IsInternalConsistency(err), "value %v", v)
	}
	got, err := checkRange(1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}
