package tdp

import (
	"math"
	"sort"

	"goari/domain/ari"
	"goari/domain/core"

	"gonum.org/v1/gonum/mat"
)

// Permutation is the permutation-calibrated oracle. A scalar lambda is tuned
// on the permutation null so that the Simes-shaped critical value family
// controls the TDP bound at level alpha.
type Permutation struct {
	p        ari.Map
	alpha    float64
	shift    int
	lambda   float64
	critical []float64
}

// NewPermutation builds the oracle from a PermutationMatrix (locations x
// 1+permutations, column 0 observed). shift is the minimum cluster size of
// interest; 0 means any size.
func NewPermutation(dist *mat.Dense, shape ari.Shape, alpha float64, shift int) (*Permutation, error) {
	if err := ari.ValidateAlpha(alpha); err != nil {
		return nil, err
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	rows, _ := dist.Dims()
	if rows != shape.Size() {
		return nil, core.NewError(core.ErrInvalidShape,
			"permutation matrix has %d locations, shape %v has %d", rows, []int(shape), shape.Size())
	}
	if shift < 0 || shift >= rows {
		return nil, core.NewError(core.ErrInvalidShift, "shift must lie in [0, %d), got %d", rows, shift)
	}

	lambda := calibrateLambda(dist, alpha, shift)
	return &Permutation{
		p:        ari.Map{Shape: shape.Clone(), Values: mat.Col(nil, 0, dist)},
		alpha:    alpha,
		shift:    shift,
		lambda:   lambda,
		critical: criticalValues(rows, alpha, lambda, shift),
	}, nil
}

// calibrateLambda takes, for every column, the smallest ratio of the sorted
// p-values to the unscaled Simes critical values above the shift, and returns
// the empirical alpha-quantile of those minima.
func calibrateLambda(dist *mat.Dense, alpha float64, shift int) float64 {
	if alpha == 0 {
		return 0
	}
	n, b := dist.Dims()
	minima := make([]float64, b)
	col := make([]float64, n)
	span := float64(n - shift)
	for j := 0; j < b; j++ {
		mat.Col(col, j, dist)
		sort.Float64s(col)
		m := math.Inf(1)
		for rank := shift + 1; rank <= n; rank++ {
			v := span * col[rank-1] / (float64(rank-shift) * alpha)
			if v < m {
				m = v
			}
		}
		minima[j] = m
	}
	sort.Float64s(minima)
	idx := int(math.Floor(alpha * float64(b)))
	if idx > b-1 {
		idx = b - 1
	}
	return minima[idx]
}

func criticalValues(n int, alpha, lambda float64, shift int) []float64 {
	crit := make([]float64, n)
	if alpha == 0 {
		return crit
	}
	for rank := 1; rank <= n; rank++ {
		crit[rank-1] = float64(rank-shift) * alpha * lambda / float64(n-shift)
	}
	return crit
}

// TrueDiscoveryProportion bounds the share of non-null locations in mask:
// max over i of (#p <= critical[i]) - i, divided by the mask size.
func (o *Permutation) TrueDiscoveryProportion(mask ari.Mask) (float64, error) {
	p, err := maskedPValues(o.p, mask)
	if err != nil {
		return 0, err
	}
	sort.Float64s(p)
	m := len(p)

	best := math.Inf(-1)
	below := 0
	for i := 0; i < m; i++ {
		for below < m && p[below] <= o.critical[i] {
			below++
		}
		if u := float64(below - i); u > best {
			best = u
		}
	}
	return checkRange(best / float64(m))
}

// Lambda returns the calibrated multiplier
func (o *Permutation) Lambda() float64 { return o.lambda }

// Shift returns the minimum cluster size the family was shifted for
func (o *Permutation) Shift() int { return o.shift }

// CriticalValues returns a copy of the rank-indexed critical value family
func (o *Permutation) CriticalValues() []float64 {
	return append([]float64(nil), o.critical...)
}

// PValues returns the observed p-value map (column 0 of the matrix)
func (o *Permutation) PValues() ari.Map { return o.p }
