package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/voxgate/voxgate/internal/common"
	"github.com/voxgate/voxgate/internal/server/tts"
)

const (
	msgServerError    = "Server error"
	msgNotAuthorized  = "not authorized"
	msgTokenExpired   = "token expired"
	msgLimitExceeded  = "Character limit exceeded. Please upgrade your plan."
	msgUserExists     = "User already exists"
	msgBadCredentials = "Invalid credentials"
	msgConflict       = "The account was modified concurrently, please retry"
	msgUnavailable    = "Speech synthesis is unavailable"
	msgTimeout        = "Speech synthesis timed out"

	maxBodyBytes = 1 << 20
)

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{"success": false, "message": msg})
}

// errorResponse maps a service error onto a status code and a client-safe
// message. The bool is false for errors that should be logged.
func errorResponse(err error) (int, string, bool) {
	var ve *common.ValidationError

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message, true
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, "Invalid request", true
	case errors.Is(err, common.ErrDuplicateIdentity):
		return http.StatusBadRequest, msgUserExists, true
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusBadRequest, msgBadCredentials, true
	case errors.Is(err, common.ErrQuotaExceeded):
		return http.StatusBadRequest, msgLimitExceeded, true
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, msgTokenExpired, true
	case errors.Is(err, common.ErrTokenInvalid), errors.Is(err, common.ErrTokenMalformed):
		return http.StatusUnauthorized, msgNotAuthorized, true
	case errors.Is(err, common.ErrConcurrentModification):
		return http.StatusConflict, msgConflict, true
	case errors.Is(err, tts.ErrNotConfigured):
		return http.StatusServiceUnavailable, msgUnavailable, false
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, msgTimeout, true
	default:
		return http.StatusInternalServerError, msgServerError, false
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.NewValidationError("body", "Invalid JSON body")
	}
	return nil
}
