package permutation

import (
	"math"

	"goari/domain/ari"
	"goari/domain/core"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// WelchTTest returns a two-sample t-test that does not assume equal group
// variances. Degrees of freedom follow the Welch-Satterthwaite equation.
func WelchTTest(tail ari.Tail) ari.StatFunc {
	return func(groups []*mat.Dense) ([]float64, error) {
		if err := tail.Validate(); err != nil {
			return nil, err
		}
		if len(groups) != 2 {
			return nil, core.NewError(core.ErrInvalidGroups,
				"Welch's t-test needs exactly two groups, got %d", len(groups))
		}
		a, b := groups[0], groups[1]
		n1, locations := a.Dims()
		n2, other := b.Dims()
		if locations != other {
			return nil, core.NewError(core.ErrInvalidGroups, "groups have %d and %d locations", locations, other)
		}
		if n1 < 2 || n2 < 2 {
			return nil, core.NewError(core.ErrInvalidGroups,
				"Welch's t-test needs at least 2 observations per group (got %d and %d)", n1, n2)
		}

		colA := make([]float64, n1)
		colB := make([]float64, n2)
		p := make([]float64, locations)
		for j := 0; j < locations; j++ {
			meanA, varA := stat.MeanVariance(mat.Col(colA, j, a), nil)
			meanB, varB := stat.MeanVariance(mat.Col(colB, j, b), nil)
			sa := varA / float64(n1)
			sb := varB / float64(n2)
			se := math.Sqrt(sa + sb)
			p[j] = tailProbability(tStatistic(meanA-meanB, se), welchDF(sa, sb, n1, n2), tail)
		}
		return p, nil
	}
}

// welchDF falls back to the pooled degrees of freedom when both groups are constant
func welchDF(sa, sb float64, n1, n2 int) float64 {
	denom := sa*sa/float64(n1-1) + sb*sb/float64(n2-1)
	if denom == 0 {
		return float64(n1 + n2 - 2)
	}
	return (sa + sb) * (sa + sb) / denom
}
