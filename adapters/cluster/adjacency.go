package cluster

import (
	"sort"
	"strconv"
	"strings"

	"goari/domain/ari"
	"goari/domain/core"
)

// Adjacency is an undirected neighbourhood structure over n vertices.
// Neighbour lists are sorted and free of duplicates and self loops.
type Adjacency struct {
	neighbors [][]int
}

// NewAdjacency builds an adjacency over n vertices from an edge list.
// Self loops are ignored; every edge is stored in both directions.
func NewAdjacency(n int, edges [][2]int) (*Adjacency, error) {
	if n < 1 {
		return nil, core.NewError(core.ErrInvalidShape, "adjacency needs at least one vertex, got %d", n)
	}
	sets := make([]map[int]struct{}, n)
	for _, e := range edges {
		a, b := e[0], e[1]
		if a < 0 || a >= n || b < 0 || b >= n {
			return nil, core.NewError(core.ErrInvalidShape, "edge (%d,%d) out of range for %d vertices", a, b, n)
		}
		if a == b {
			continue
		}
		if sets[a] == nil {
			sets[a] = make(map[int]struct{})
		}
		if sets[b] == nil {
			sets[b] = make(map[int]struct{})
		}
		sets[a][b] = struct{}{}
		sets[b][a] = struct{}{}
	}

	adj := &Adjacency{neighbors: make([][]int, n)}
	for v, set := range sets {
		list := make([]int, 0, len(set))
		for u := range set {
			list = append(list, u)
		}
		sort.Ints(list)
		adj.neighbors[v] = list
	}
	return adj, nil
}

// Chain is the adjacency of n vertices on a line, each linked to its
// predecessor and successor.
func Chain(n int) (*Adjacency, error) {
	edges := make([][2]int, 0, n)
	for i := 0; i+1 < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	return NewAdjacency(n, edges)
}

// Len returns the number of vertices
func (a *Adjacency) Len() int { return len(a.neighbors) }

// Neighbors returns the sorted neighbour list of vertex v
func (a *Adjacency) Neighbors(v int) []int { return a.neighbors[v] }

// AdjacencyForShape builds the spatial adjacency of a request. It returns nil,
// meaning a regular lattice, when no edges are given. A zero vertex count
// defaults to the size of one time slice of shape (all of it for one axis).
func AdjacencyForShape(shape ari.Shape, edges [][2]int, vertices int) (*Adjacency, error) {
	if len(edges) == 0 {
		return nil, nil
	}
	if vertices == 0 {
		vertices = shape.Size()
		if len(shape) > 1 {
			vertices /= shape[0]
		}
	}
	return NewAdjacency(vertices, edges)
}

// ParseEdges reads an edge list written as "0-1,1-2". Blank input is an
// empty list.
func ParseEdges(s string) ([][2]int, error) {
	var edges [][2]int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		left, right, ok := strings.Cut(field, "-")
		if !ok {
			return nil, core.NewError(core.ErrInvalidShape, "edge %q is not of the form a-b", field)
		}
		a, errA := strconv.Atoi(strings.TrimSpace(left))
		b, errB := strconv.Atoi(strings.TrimSpace(right))
		if errA != nil || errB != nil {
			return nil, core.NewError(core.ErrInvalidShape, "edge %q has a non-integer vertex", field)
		}
		edges = append(edges, [2]int{a, b})
	}
	return edges, nil
}

// CombineAdjacency builds the Cartesian product of several axis adjacencies.
// Vertices are numbered row-major with the first adjacency as the slowest
// axis. Two vertices are neighbours when they differ along exactly one axis
// and are neighbours along that axis.
func CombineAdjacency(adjs ...*Adjacency) (*Adjacency, error) {
	if len(adjs) == 0 {
		return nil, core.NewError(core.ErrInvalidShape, "no adjacencies to combine")
	}
	dims := make([]int, len(adjs))
	total := 1
	for i, a := range adjs {
		if a == nil || a.Len() == 0 {
			return nil, core.NewError(core.ErrInvalidShape, "adjacency %d is empty", i)
		}
		dims[i] = a.Len()
		total *= dims[i]
	}
	strides := make([]int, len(dims))
	stride := 1
	for i := len(dims) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= dims[i]
	}

	combined := &Adjacency{neighbors: make([][]int, total)}
	for v := 0; v < total; v++ {
		var list []int
		for axis, a := range adjs {
			coord := (v / strides[axis]) % dims[axis]
			base := v - coord*strides[axis]
			for _, u := range a.neighbors[coord] {
				list = append(list, base+u*strides[axis])
			}
		}
		sort.Ints(list)
		combined.neighbors[v] = list
	}
	return combined, nil
}

// SetupAdjacency fits a spatial adjacency to a map of nTests locations.
// When the adjacency already covers nTests vertices it is returned as is.
// When it covers nTests/nTimes vertices, the spatio-temporal adjacency is
// built: spatial edges at every time point plus links between the same
// vertex at consecutive time points. Time is the slowest axis.
func SetupAdjacency(adj *Adjacency, nTests, nTimes int) (*Adjacency, error) {
	if adj == nil {
		return nil, core.NewError(core.ErrInvalidShape, "adjacency is nil")
	}
	if adj.Len() == nTests {
		return adj, nil
	}
	if nTimes < 1 || adj.Len()*nTimes != nTests {
		return nil, core.NewError(core.ErrInvalidShape,
			"adjacency has %d vertices, expected %d or %d/%d", adj.Len(), nTests, nTests, nTimes)
	}
	timeAxis, err := Chain(nTimes)
	if err != nil {
		return nil, err
	}
	return CombineAdjacency(timeAxis, adj)
}
