package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("register: %w", NewValidationError("email", "Please include a valid email"))

	assert.ErrorIs(t, err, ErrValidation)

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "email", ve.Field)
	assert.Equal(t, "Please include a valid email", ve.Message)
	assert.Contains(t, err.Error(), "email")
}
