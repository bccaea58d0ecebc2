package tdp

import (
	"math"
	"sort"

	"goari/domain/ari"
	"goari/domain/core"
)

// Parametric is the Simes-based closed-testing oracle. It derives the Hommel
// value once from the observed p-values and answers every later query in
// closed form. The p-values must be individually valid.
type Parametric struct {
	p      ari.Map
	alpha  float64
	hommel int
}

// NewParametric builds the oracle from observed p-values. Every p-value must
// lie in (0, 1]; zero makes the bound exceed one and anything outside the
// interval would yield a proportion that only looks valid.
func NewParametric(p ari.Map, alpha float64) (*Parametric, error) {
	if err := ari.ValidateAlpha(alpha); err != nil {
		return nil, err
	}
	if err := p.Shape.Validate(); err != nil {
		return nil, err
	}
	if len(p.Values) != p.Shape.Size() {
		return nil, core.NewError(core.ErrInvalidShape,
			"%d p-values do not fill shape %v", len(p.Values), []int(p.Shape))
	}
	for i, v := range p.Values {
		if v == 0 {
			return nil, core.NewError(core.ErrZeroPValue,
				"location %d; try a different statistic function", i)
		}
		if !(v > 0 && v <= 1) {
			return nil, core.NewError(core.ErrInvalidPValue,
				"location %d has p-value %v; did a custom statistic function return something other than p-values?", i, v)
		}
	}
	owned := ari.Map{Shape: p.Shape.Clone(), Values: append([]float64(nil), p.Values...)}
	return &Parametric{p: owned, alpha: alpha, hommel: HommelValue(p.Values, alpha)}, nil
}

// HommelValue is the size of the largest set of hypotheses that the Simes
// closed-testing procedure could not reject at level alpha.
func HommelValue(pValues []float64, alpha float64) int {
	n := len(pValues)
	if n == 0 {
		return 0
	}
	p := append([]float64(nil), pValues...)
	sort.Float64s(p)

	if n == 1 {
		if p[0] > alpha {
			return 1
		}
		return 0
	}
	if p[0] > alpha {
		return n
	}
	if p[n-1] < alpha {
		return 0
	}

	slope := math.Inf(-1)
	for k := 0; k < n-1; k++ {
		s := (alpha - p[k]) / float64(n-1-k)
		if s > slope {
			slope = s
		}
	}
	if slope <= 0 {
		return n
	}
	h := math.Trunc(alpha / slope)
	if h > float64(n) {
		return n
	}
	return int(h)
}

// TrueDiscoveryProportion bounds the share of non-null locations in mask
func (o *Parametric) TrueDiscoveryProportion(mask ari.Mask) (float64, error) {
	p, err := maskedPValues(o.p, mask)
	if err != nil {
		return 0, err
	}
	return checkRange(trueDiscoveryFraction(p, o.hommel, o.alpha))
}

// trueDiscoveryFraction groups the sorted p-values by c = ceil(h*p/alpha)
// and takes the best cumulative count minus (c - 1).
func trueDiscoveryFraction(p []float64, hommel int, alpha float64) float64 {
	n := len(p)
	if hommel == 0 {
		// every hypothesis is rejected
		return 1
	}
	sorted := append([]float64(nil), p...)
	sort.Float64s(sorted)

	best := math.Inf(-1)
	count := 0
	for i := 0; i < n; {
		c := math.Ceil(float64(hommel) * sorted[i] / alpha)
		j := i + 1
		for j < n && math.Ceil(float64(hommel)*sorted[j]/alpha) == c {
			j++
		}
		count += j - i
		if crit := float64(count) - (c - 1); crit > best {
			best = crit
		}
		i = j
	}
	return math.Max(0, best) / float64(n)
}

// HommelValue returns the integer summary derived at construction
func (o *Parametric) HommelValue() int { return o.hommel }

// Alpha returns the confidence level the oracle was built for
func (o *Parametric) Alpha() float64 { return o.alpha }

// PValues returns the observed p-value map
func (o *Parametric) PValues() ari.Map { return o.p }
