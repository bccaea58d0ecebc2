package rng

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draw(t *testing.T, chunk int, seed int64) []int64 {
	t.Helper()
	r, err := NewSeededAdapter().Stream(context.Background(), "sign-flip", chunk, seed)
	require.NoError(t, err)
	out := make([]int64, 8)
	for i := range out {
		out[i] = r.Int63()
	}
	return out
}

func TestStreamIsDeterministic(t *testing.T) {
	assert.Equal(t, draw(t, 3, 42), draw(t, 3, 42))
	assert.NotEqual(t, draw(t, 3, 42), draw(t, 4, 42))
	assert.NotEqual(t, draw(t, 3, 42), draw(t, 3, 43))
}

func TestStreamHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSeededAdapter().Stream(ctx, "relabel", 0, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
