package permutation

import (
	"math/rand"

	"goari/domain/ari"

	"gonum.org/v1/gonum/mat"
)

// design describes how one null realization relabels the observations.
// Labels are sign flips (+1/-1 per observation) for a single group and a
// permutation of the pooled rows for several groups.
type design interface {
	stage() string
	identity() []int
	draw(r *rand.Rand, labels []int)
	// effect writes the per-location mean (one group) or difference of the
	// first two group means under the labeling
	effect(labels []int, dst []float64)
	materialize(labels []int) []*mat.Dense
}

func newDesign(samples ari.Samples) design {
	if len(samples.Groups) == 1 {
		return &signFlip{x: samples.Groups[0]}
	}
	return newRelabel(samples.Groups)
}

type signFlip struct {
	x *mat.Dense
}

func (d *signFlip) stage() string { return "sign-flip" }

func (d *signFlip) identity() []int {
	n, _ := d.x.Dims()
	labels := make([]int, n)
	for i := range labels {
		labels[i] = 1
	}
	return labels
}

func (d *signFlip) draw(r *rand.Rand, labels []int) {
	for i := range labels {
		if r.Intn(2) == 0 {
			labels[i] = -1
		} else {
			labels[i] = 1
		}
	}
}

func (d *signFlip) effect(labels []int, dst []float64) {
	n, _ := d.x.Dims()
	for j := range dst {
		dst[j] = 0
	}
	for i := 0; i < n; i++ {
		row := d.x.RawRowView(i)
		s := float64(labels[i])
		for j, v := range row {
			dst[j] += s * v
		}
	}
	for j := range dst {
		dst[j] /= float64(n)
	}
}

func (d *signFlip) materialize(labels []int) []*mat.Dense {
	n, c := d.x.Dims()
	flipped := mat.NewDense(n, c, nil)
	for i := 0; i < n; i++ {
		src := d.x.RawRowView(i)
		dst := flipped.RawRowView(i)
		s := float64(labels[i])
		for j, v := range src {
			dst[j] = s * v
		}
	}
	return []*mat.Dense{flipped}
}

type relabel struct {
	pooled *mat.Dense
	sizes  []int
}

func newRelabel(groups []*mat.Dense) *relabel {
	sizes := make([]int, len(groups))
	total := 0
	_, c := groups[0].Dims()
	for i, g := range groups {
		sizes[i], _ = g.Dims()
		total += sizes[i]
	}
	pooled := mat.NewDense(total, c, nil)
	row := 0
	for _, g := range groups {
		r, _ := g.Dims()
		for i := 0; i < r; i++ {
			pooled.SetRow(row, g.RawRowView(i))
			row++
		}
	}
	return &relabel{pooled: pooled, sizes: sizes}
}

func (d *relabel) stage() string { return "relabel" }

func (d *relabel) identity() []int {
	n, _ := d.pooled.Dims()
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i
	}
	return labels
}

func (d *relabel) draw(r *rand.Rand, labels []int) {
	for i := range labels {
		labels[i] = i
	}
	r.Shuffle(len(labels), func(i, j int) {
		labels[i], labels[j] = labels[j], labels[i]
	})
}

func (d *relabel) effect(labels []int, dst []float64) {
	n1, n2 := d.sizes[0], d.sizes[1]
	first := make([]float64, len(dst))
	for j := range dst {
		dst[j] = 0
	}
	for k := 0; k < n1+n2; k++ {
		row := d.pooled.RawRowView(labels[k])
		if k < n1 {
			for j, v := range row {
				first[j] += v
			}
		} else {
			for j, v := range row {
				dst[j] += v
			}
		}
	}
	for j := range dst {
		dst[j] = first[j]/float64(n1) - dst[j]/float64(n2)
	}
}

func (d *relabel) materialize(labels []int) []*mat.Dense {
	_, c := d.pooled.Dims()
	groups := make([]*mat.Dense, len(d.sizes))
	k := 0
	for g, size := range d.sizes {
		m := mat.NewDense(size, c, nil)
		for i := 0; i < size; i++ {
			m.SetRow(i, d.pooled.RawRowView(labels[k]))
			k++
		}
		groups[g] = m
	}
	return groups
}
