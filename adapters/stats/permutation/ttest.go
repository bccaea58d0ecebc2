package permutation

import (
	"math"

	"goari/domain/ari"
	"goari/domain/core"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TTest returns the built-in statistic: a one-sample t-test against zero for
// a single group, or a pooled-variance two-sample t-test for two groups.
func TTest(tail ari.Tail) ari.StatFunc {
	return func(groups []*mat.Dense) ([]float64, error) {
		if err := tail.Validate(); err != nil {
			return nil, err
		}
		switch len(groups) {
		case 1:
			return oneSampleT(groups[0], tail)
		case 2:
			return twoSampleT(groups[0], groups[1], tail)
		}
		return nil, core.NewError(core.ErrInvalidGroups,
			"the built-in t-test needs one or two groups, got %d", len(groups))
	}
}

func oneSampleT(x *mat.Dense, tail ari.Tail) ([]float64, error) {
	n, locations := x.Dims()
	if n < 2 {
		return nil, core.NewError(core.ErrInvalidGroups, "one-sample t-test needs at least 2 observations, got %d", n)
	}
	df := float64(n - 1)
	col := make([]float64, n)
	p := make([]float64, locations)
	for j := 0; j < locations; j++ {
		mean, variance := stat.MeanVariance(mat.Col(col, j, x), nil)
		se := math.Sqrt(variance / float64(n))
		p[j] = tailProbability(tStatistic(mean, se), df, tail)
	}
	return p, nil
}

func twoSampleT(a, b *mat.Dense, tail ari.Tail) ([]float64, error) {
	n1, locations := a.Dims()
	n2, other := b.Dims()
	if locations != other {
		return nil, core.NewError(core.ErrInvalidGroups, "groups have %d and %d locations", locations, other)
	}
	if n1 < 1 || n2 < 1 || n1+n2 < 3 {
		return nil, core.NewError(core.ErrInvalidGroups, "two-sample t-test needs more observations (got %d and %d)", n1, n2)
	}
	df := float64(n1 + n2 - 2)
	colA := make([]float64, n1)
	colB := make([]float64, n2)
	p := make([]float64, locations)
	for j := 0; j < locations; j++ {
		meanA, varA := stat.MeanVariance(mat.Col(colA, j, a), nil)
		meanB, varB := stat.MeanVariance(mat.Col(colB, j, b), nil)
		if n1 == 1 {
			varA = 0
		}
		if n2 == 1 {
			varB = 0
		}
		pooled := (float64(n1-1)*varA + float64(n2-1)*varB) / df
		se := math.Sqrt(pooled * (1/float64(n1) + 1/float64(n2)))
		p[j] = tailProbability(tStatistic(meanA-meanB, se), df, tail)
	}
	return p, nil
}

// tStatistic treats a zero effect with zero spread as no evidence at all
func tStatistic(effect, se float64) float64 {
	if se == 0 {
		switch {
		case effect > 0:
			return math.Inf(1)
		case effect < 0:
			return math.Inf(-1)
		}
		return 0
	}
	return effect / se
}

func tailProbability(t, df float64, tail ari.Tail) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	survival := func(x float64) float64 {
		switch {
		case math.IsInf(x, 1):
			return 0
		case math.IsInf(x, -1):
			return 1
		}
		return dist.Survival(x)
	}
	switch tail {
	case ari.TailGreater:
		return survival(t)
	case ari.TailLess:
		return survival(-t)
	}
	return math.Min(1, 2*survival(math.Abs(t)))
}

// NamedStatFunc resolves a statistic name for request surfaces. The empty
// name selects the built-in statistic and returns nil.
func NamedStatFunc(name string, tail ari.Tail) (ari.StatFunc, error) {
	switch name {
	case "", "builtin":
		return nil, nil
	case "ttest":
		return TTest(tail), nil
	case "welch":
		return WelchTTest(tail), nil
	}
	return nil, core.NewError(core.ErrInvalidParameter, "unknown statistic %q", name)
}
