package ari

import (
	"testing"

	"goari/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestShape(t *testing.T) {
	s := Shape{3, 4, 5}
	assert.Equal(t, 60, s.Size())
	assert.Equal(t, []int{20, 5, 1}, s.Strides())
	assert.True(t, s.Equal(Shape{3, 4, 5}))
	assert.False(t, s.Equal(Shape{3, 4}))
	assert.NoError(t, s.Validate())
	assert.True(t, core.IsInvalidParameter(Shape{}.Validate()))
	assert.True(t, core.IsInvalidParameter(Shape{2, 0}.Validate()))
}

func TestMask(t *testing.T) {
	m, err := NewMask(Shape{2, 3}, []int{4, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, m.Indices())
	assert.Equal(t, 2, m.Size())

	_, err = NewMask(Shape{2, 3}, []int{6})
	assert.True(t, core.IsInvalidParameter(err))
}

func TestParseTail(t *testing.T) {
	tests := []struct {
		input string
		want  Tail
	}{
		{"greater", TailGreater},
		{"1", TailGreater},
		{"less", TailLess},
		{"-1", TailLess},
		{"two-sided", TailTwoSided},
		{"0", TailTwoSided},
		{"", TailTwoSided},
	}
	for _, tt := range tests {
		got, err := ParseTail(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseTail("sideways")
	assert.True(t, core.IsInvalidParameter(err))
	assert.True(t, core.IsInvalidParameter(Tail(2).Validate()))
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("permutation")
	require.NoError(t, err)
	assert.Equal(t, MethodPermutation, m)

	m, err = ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodParametric, m)

	_, err = ParseMethod("bayesian")
	assert.True(t, core.IsInvalidParameter(err))
}

func TestValidateAlpha(t *testing.T) {
	assert.NoError(t, ValidateAlpha(0.05))
	assert.NoError(t, ValidateAlpha(0))
	assert.NoError(t, ValidateAlpha(1))
	assert.True(t, core.IsInvalidParameter(ValidateAlpha(-0.1)))
	assert.True(t, core.IsInvalidParameter(ValidateAlpha(1.5)))
}

func TestGrid(t *testing.T) {
	g, err := ParseGrid("")
	require.NoError(t, err)
	assert.Equal(t, GridAuto, g.Kind)

	g, err = ParseGrid("all")
	require.NoError(t, err)
	assert.Equal(t, GridAll, g.Kind)

	g, err = ParseGrid("0.01, 0.001")
	require.NoError(t, err)
	assert.Equal(t, GridExplicit, g.Kind)
	assert.Equal(t, []float64{0.01, 0.001}, g.Thresholds)
	assert.Equal(t, "0.01,0.001", g.String())

	assert.NoError(t, ExplicitGrid(0.2).Validate())
	assert.True(t, core.IsInvalidParameter(ExplicitGrid(1.2).Validate()))
	assert.True(t, core.IsInvalidParameter(ExplicitGrid(-0.01).Validate()))

	_, err = ParseGrid("0.1,abc")
	assert.True(t, core.IsInvalidParameter(err))
}

func TestNewSamples(t *testing.T) {
	g := mat.NewDense(4, 6, nil)
	s, err := NewSamples(Shape{2, 3}, g)
	require.NoError(t, err)
	assert.Equal(t, 6, s.Locations())
	assert.Equal(t, 4, s.Observations())

	_, err = NewSamples(Shape{5}, g)
	assert.True(t, core.IsInvalidParameter(err))

	_, err = NewSamples(Shape{2, 3})
	assert.True(t, core.IsInvalidParameter(err))
}

func TestMapFrom(t *testing.T) {
	m, err := MapFrom(Shape{2}, []float64{0.1, 0.2})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	_, err = MapFrom(Shape{3}, []float64{0.1})
	assert.True(t, core.IsInvalidParameter(err))
}
