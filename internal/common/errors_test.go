package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamError_UnwrapsToInvalidParams(t *testing.T) {
	err := fmt.Errorf("create view: %w", InvalidParams("name", "must not be empty"))

	require.ErrorIs(t, err, ErrInvalidParams)
	assert.False(t, errors.Is(err, ErrorNotFound))

	var pe *ParamError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "name", pe.Field)
	assert.Equal(t, "must not be empty", pe.Reason)
	assert.Equal(t, "create view: invalid parameters: name: must not be empty", err.Error())
}
