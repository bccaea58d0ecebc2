package cluster

import (
	"context"

	"goari/domain/ari"
	"goari/domain/core"
	"goari/ports"
)

var _ ports.ClusterFinder = (*Lattice)(nil)

// Lattice finds face-connected clusters on a regular n-d grid. Two locations
// are neighbours when their coordinates differ by one along a single axis.
type Lattice struct {
	shape   ari.Shape
	strides []int
}

// NewLattice returns a finder for maps of the given shape
func NewLattice(shape ari.Shape) (*Lattice, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &Lattice{shape: shape.Clone(), strides: shape.Strides()}, nil
}

// FindClusters returns the connected components of the included locations
func (l *Lattice) FindClusters(ctx context.Context, values []float64, threshold float64, rule ports.InclusionRule) ([][]int, error) {
	if len(values) != l.shape.Size() {
		return nil, core.NewError(core.ErrInvalidShape,
			"map has %d locations, lattice %v has %d", len(values), []int(l.shape), l.shape.Size())
	}
	return components(ctx, len(values), func(v int) bool {
		return rule.Includes(values[v], threshold)
	}, l.neighbors)
}

func (l *Lattice) neighbors(v int, visit func(int)) {
	for axis, stride := range l.strides {
		coord := (v / stride) % l.shape[axis]
		if coord > 0 {
			visit(v - stride)
		}
		if coord+1 < l.shape[axis] {
			visit(v + stride)
		}
	}
}
