// Package rng implements ports.RNGPort with math/rand sources seeded from a
// base seed and a stream name.
package rng

import (
	"context"
	"math/rand"
	"strconv"
)

// SeededAdapter implements the RNGPort interface
type SeededAdapter struct{}

// NewSeededAdapter creates the production RNG adapter
func NewSeededAdapter() *SeededAdapter {
	return &SeededAdapter{}
}

// Stream derives an independent generator for one chunk of a stage
func (r *SeededAdapter) Stream(ctx context.Context, stageName string, chunk int, baseSeed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seed := baseSeed
	if stageName != "" {
		seed = int64(hashString(stageName)) + seed
	}
	seed = int64(hashString(strconv.Itoa(chunk)))*7919 + seed
	return rand.New(rand.NewSource(seed)), nil
}

// hashString is djb2
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c)
	}
	return hash
}
