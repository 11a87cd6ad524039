package apierror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_Error(t *testing.T) {
	err := NewAPIError(ErrNotFound, "session not found", nil)
	assert.Equal(t, "NOT_FOUND: session not found", err.Error())
}

func TestAPIError_UnwrapsSentinel(t *testing.T) {
	sentinel := errors.New("factor rejected")
	wrapped := NewAPIError(ErrUnauthorized, "Authorization factor rejected", sentinel)

	assert.ErrorIs(t, wrapped, sentinel)
	assert.Equal(t, http.StatusUnauthorized, MapErrorToHTTPStatus(wrapped))

	bare := NewAPIError(ErrUnauthorized, "no details", nil)
	assert.Nil(t, bare.Unwrap())
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", NewAPIError(ErrNotFound, "missing", nil), http.StatusNotFound},
		{"conflict", NewAPIError(ErrConflict, "duplicate", nil), http.StatusConflict},
		{"bad request", NewAPIError(ErrBadRequest, "malformed", nil), http.StatusBadRequest},
		{"invalid input", NewAPIError(ErrInvalidInput, "bad field", nil), http.StatusBadRequest},
		{"unauthorized", NewAPIError(ErrUnauthorized, "factor rejected", nil), http.StatusUnauthorized},
		{"session state", NewAPIError(ErrSessionState, "wrong status", nil), http.StatusConflict},
		{"internal", NewAPIError(ErrInternalServer, "boom", nil), http.StatusInternalServerError},
		{"unknown code", NewAPIError(ErrorCode("SOMETHING"), "boom", nil), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapErrorToHTTPStatus(tt.err))
		})
	}
}
