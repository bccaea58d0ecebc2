package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	assert.True(t, IsInvalidParameter(ErrInvalidAlpha))
	assert.True(t, IsInvalidParameter(NewError(ErrInvalidShift, "shift %d", -1)))
	assert.False(t, IsInvalidParameter(ErrZeroPValue))

	assert.True(t, IsDegenerateInput(fmt.Errorf("building oracle: %w", ErrZeroPValue)))
	assert.True(t, IsInternalConsistency(NewTDPRangeError(1.5)))
	assert.False(t, IsInternalConsistency(ErrInvalidMask))
}

func TestNewErrorKeepsCategory(t *testing.T) {
	err := NewError(ErrZeroPValue, "location %d", 3)
	assert.True(t, IsDegenerateInput(err))
	assert.False(t, IsInvalidParameter(err))
	assert.ErrorIs(t, err, ErrZeroPValue)
	assert.Contains(t, err.Error(), "location 3")

	err = NewError(ErrInvalidPValue, "location %d has p-value %v", 0, -0.5)
	assert.True(t, IsDegenerateInput(err))
	assert.False(t, IsInvalidParameter(err))
	assert.False(t, IsInternalConsistency(err))
}
