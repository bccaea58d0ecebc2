package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// Stream creates a deterministic RNG stream for one chunk of a resampling stage.
	// The same (stage, chunk, baseSeed) always yields the same sequence, so the
	// permutation engine produces identical results for any worker count.
	Stream(ctx context.Context, stageName string, chunk int, baseSeed int64) (*rand.Rand, error)
}
