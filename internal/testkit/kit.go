package testkit

import (
	"math/rand"

	"goari/adapters/rng"
	"goari/domain/ari"
	"goari/ports"

	"gonum.org/v1/gonum/mat"
)

// TestKit provides seeded synthetic observations for tests and demos
type TestKit struct {
	rng *rand.Rand
}

// NewTestKit creates a new test kit whose draws are fixed by seed
func NewTestKit(seed int64) *TestKit {
	return &TestKit{rng: rand.New(rand.NewSource(seed))}
}

// RNGAdapter returns the production RNG adapter
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return rng.NewSeededAdapter()
}

// Normal draws an n x locations matrix of standard normal values
func (t *TestKit) Normal(n, locations int) *mat.Dense {
	data := make([]float64, n*locations)
	for i := range data {
		data[i] = t.rng.NormFloat64()
	}
	return mat.NewDense(n, locations, data)
}

// AddEffect shifts the given locations of every observation by delta
func AddEffect(m *mat.Dense, locations []int, delta float64) *mat.Dense {
	n, _ := m.Dims()
	for i := 0; i < n; i++ {
		for _, j := range locations {
			m.Set(i, j, m.At(i, j)+delta)
		}
	}
	return m
}

// OneSample draws a null one-sample dataset over shape
func (t *TestKit) OneSample(shape ari.Shape, n int) ari.Samples {
	s, err := ari.NewSamples(shape, t.Normal(n, shape.Size()))
	if err != nil {
		panic(err)
	}
	return s
}

// TwoSample draws a null two-sample dataset over shape
func (t *TestKit) TwoSample(shape ari.Shape, n1, n2 int) ari.Samples {
	s, err := ari.NewSamples(shape, t.Normal(n1, shape.Size()), t.Normal(n2, shape.Size()))
	if err != nil {
		panic(err)
	}
	return s
}

// UniformPValues draws n p-values uniform on (0, 1)
func (t *TestKit) UniformPValues(n int) []float64 {
	p := make([]float64, n)
	for i := range p {
		for p[i] == 0 {
			p[i] = t.rng.Float64()
		}
	}
	return p
}

// Block returns the flat indices of a contiguous run [from, to)
func Block(from, to int) []int {
	idx := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		idx = append(idx, i)
	}
	return idx
}
