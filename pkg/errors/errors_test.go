package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	inner := fmt.Errorf("column does not exist")
	err := Internal(inner)

	assert.Contains(t, err.Error(), "INTERNAL_ERROR")
	assert.Contains(t, err.Error(), "column does not exist")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestConstructors_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		code   string
	}{
		{"not found", NotFound("book", "b-1"), http.StatusNotFound, "NOT_FOUND"},
		{"already exists", AlreadyExists("review", "book", "b-1"), http.StatusConflict, "ALREADY_EXISTS"},
		{"invalid input", InvalidInput("rating must be between 1 and 5"), http.StatusBadRequest, "INVALID_INPUT"},
		{"unauthorized", Unauthorized("missing session token"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", Forbidden("account is not verified"), http.StatusForbidden, "FORBIDDEN"},
		{"unavailable", Unavailable("database is unreachable"), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{"rate limited", RateLimited("too many verification emails requested"), http.StatusTooManyRequests, "RATE_LIMITED"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.err.Status)
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.status, HTTPStatus(tc.err))
		})
	}
}

func TestHTTPStatus_Sentinels(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrAlreadyExists))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrInvalidInput))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrUnauthorized))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(ErrForbidden))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(ErrUnavailable))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("boom")))
}

func TestHTTPStatus_WrappedSentinel(t *testing.T) {
	err := Wrap(ErrNotFound, "get book")
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}
