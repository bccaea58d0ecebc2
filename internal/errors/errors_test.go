package errors

import (
	"fmt"
	"testing"

	"goari/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestGetCodeClassifiesDomainErrors(t *testing.T) {
	assert.Equal(t, CodeInvalidParameter, GetCode(core.ErrInvalidTail))
	assert.Equal(t, CodeDegenerateInput, GetCode(fmt.Errorf("oracle: %w", core.ErrZeroPValue)))
	assert.Equal(t, CodeInternalConsistency, GetCode(core.NewTDPRangeError(-0.2)))
	assert.Equal(t, CodeInternalError, GetCode(fmt.Errorf("boom")))
	assert.Equal(t, CodeConfigInvalid, GetCode(ConfigInvalid("bad")))
}

func TestWrapKeepsCodeAndCause(t *testing.T) {
	err := Wrap(core.ErrInvalidAlpha, "building oracle")
	assert.Equal(t, CodeInvalidParameter, GetCode(err))
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
	assert.Contains(t, err.Error(), "building oracle")
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestFromDomain(t *testing.T) {
	appErr := FromDomain(core.ErrZeroPValue)
	assert.Equal(t, CodeDegenerateInput, appErr.Code)
	assert.True(t, IsAppError(appErr))
	assert.Nil(t, FromDomain(nil))
}
