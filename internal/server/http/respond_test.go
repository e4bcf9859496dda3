package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voxgate/voxgate/internal/common"
	"github.com/voxgate/voxgate/internal/server/tts"
)

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		msg      string
		expected bool
	}{
		{"validation", common.NewValidationError("email", "Please include a valid email"), http.StatusBadRequest, "Please include a valid email", true},
		{"bare validation", common.ErrValidation, http.StatusBadRequest, "Invalid request", true},
		{"duplicate", fmt.Errorf("create: %w", common.ErrDuplicateIdentity), http.StatusBadRequest, msgUserExists, true},
		{"credentials", common.ErrInvalidCredentials, http.StatusBadRequest, msgBadCredentials, true},
		{"quota", common.ErrQuotaExceeded, http.StatusBadRequest, msgLimitExceeded, true},
		{"expired", common.ErrTokenExpired, http.StatusUnauthorized, msgTokenExpired, true},
		{"malformed", common.ErrTokenMalformed, http.StatusUnauthorized, msgNotAuthorized, true},
		{"conflict", common.ErrConcurrentModification, http.StatusConflict, msgConflict, true},
		{"no provider", tts.ErrNotConfigured, http.StatusServiceUnavailable, msgUnavailable, false},
		{"timeout", fmt.Errorf("synthesize: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, msgTimeout, true},
		{"storage", fmt.Errorf("%w: db error: %w", common.ErrStorageUnavailable, errors.New("conn refused")), http.StatusInternalServerError, msgServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg, expected := errorResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.msg, msg)
			assert.Equal(t, tt.expected, expected)
		})
	}
}
