package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *HTTPError
		status int
		code   string
	}{
		{"unauthorized", NewUnauthorizedError("Not authenticated", true), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", NewForbiddenError("No permission", true), http.StatusForbidden, "FORBIDDEN"},
		{"bad request", NewBadRequestError("bad", false, nil, nil), http.StatusBadRequest, "BAD_REQUEST"},
		{"not found", NewNotFoundError("gone", false, nil), http.StatusNotFound, "NOT_FOUND"},
		{"too many", NewTooManyRequestsError(), http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{"internal", NewInternalServerError(), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestNewBadRequestError_CustomCode(t *testing.T) {
	code := "GUESTBOOK_INVALID"
	err := NewBadRequestError("bad", true, &code, []FieldError{{Field: "message", Error: "is required"}})

	assert.Equal(t, code, err.Code)
	require.Len(t, err.Errors, 1)
	assert.Equal(t, "message", err.Errors[0].Field)
}

func TestHTTPError_IsMatchesAnyHTTPError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewForbiddenError("No permission", true))

	assert.True(t, errors.Is(wrapped, &HTTPError{}))

	var httpErr *HTTPError
	require.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, "No permission", httpErr.Error())
}

func TestWithMessage_DoesNotMutate(t *testing.T) {
	base := NewNotFoundError("Resource not found", false, nil)
	custom := base.WithMessage("Guestbook not found")

	assert.Equal(t, "Resource not found", base.Message)
	assert.Equal(t, "Guestbook not found", custom.Message)
	assert.Equal(t, base.Status, custom.Status)
}
