package cluster

import (
	"context"
	"sort"

	"goari/domain/core"
	"goari/ports"
)

var _ ports.ClusterFinder = (*Graph)(nil)

// Graph finds connected clusters over an explicit adjacency
type Graph struct {
	adj *Adjacency
}

// NewGraph returns a finder over adj
func NewGraph(adj *Adjacency) *Graph {
	return &Graph{adj: adj}
}

// FindClusters returns the connected components of the included vertices.
// Components are ordered by their smallest index and each is sorted.
func (g *Graph) FindClusters(ctx context.Context, values []float64, threshold float64, rule ports.InclusionRule) ([][]int, error) {
	if len(values) != g.adj.Len() {
		return nil, core.NewError(core.ErrInvalidShape,
			"map has %d locations, adjacency has %d vertices", len(values), g.adj.Len())
	}
	return components(ctx, len(values), func(v int) bool {
		return rule.Includes(values[v], threshold)
	}, func(v int, visit func(int)) {
		for _, u := range g.adj.neighbors[v] {
			visit(u)
		}
	})
}

// components runs a breadth-first search from every included, unseen vertex
func components(ctx context.Context, n int, included func(int) bool, neighbors func(int, func(int))) ([][]int, error) {
	seen := make([]bool, n)
	var comps [][]int
	for v0 := 0; v0 < n; v0++ {
		if seen[v0] || !included(v0) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		queue := []int{v0}
		seen[v0] = true
		for qi := 0; qi < len(queue); qi++ {
			neighbors(queue[qi], func(u int) {
				if !seen[u] && included(u) {
					seen[u] = true
					queue = append(queue, u)
				}
			})
		}
		sort.Ints(queue)
		comps = append(comps, queue)
	}
	return comps, nil
}
