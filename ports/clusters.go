package ports

import "context"

// InclusionRule decides which locations enter a cluster at a threshold
type InclusionRule int

const (
	// AtOrBelow includes locations with value <= threshold (p-value maps)
	AtOrBelow InclusionRule = iota
	// AtOrAbove includes locations with value >= threshold (TDP maps)
	AtOrAbove
)

// Includes applies the rule to a single value
func (r InclusionRule) Includes(value, threshold float64) bool {
	if r == AtOrAbove {
		return value >= threshold
	}
	return value <= threshold
}

// ClusterFinder extracts connected clusters of included locations from a
// flat (row-major) map. Each cluster is returned as a set of flat indices.
type ClusterFinder interface {
	FindClusters(ctx context.Context, values []float64, threshold float64, rule InclusionRule) ([][]int, error)
}
