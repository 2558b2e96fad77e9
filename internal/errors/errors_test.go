package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardfeed/backend/internal/repository"
)

func TestFromErrorMapsSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   ErrorCode
	}{
		{"invalid id", repository.ErrInvalidID, http.StatusBadRequest, ErrBadRequest},
		{"not found", fmt.Errorf("get post: %w", repository.ErrNotFound), http.StatusNotFound, ErrNotFound},
		{"conflict", repository.ErrConflict, http.StatusConflict, ErrConflict},
		{"invalid input", repository.ErrInvalidInput, http.StatusBadRequest, ErrBadRequest},
		{"unknown", stderrors.New("connection reset"), http.StatusInternalServerError, ErrInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromError(tt.err, "post")
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestFromErrorPassesAPIErrorsThrough(t *testing.T) {
	sentinel := Conflict("an account with this email already exists")
	wrapped := fmt.Errorf("register: %w", sentinel)

	apiErr := FromError(wrapped, "user")
	assert.Same(t, sentinel, apiErr)
	assert.True(t, stderrors.Is(wrapped, sentinel))
	assert.Nil(t, FromError(nil, "user"))
}

func TestUnknownErrorDoesNotLeakMessage(t *testing.T) {
	apiErr := FromError(stderrors.New("pq: password authentication failed"), "user")
	assert.NotContains(t, apiErr.Message, "pq")
}

func TestValidationErrorCarriesField(t *testing.T) {
	apiErr := ValidationError("text", "comment text is required")
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "text", apiErr.Field)
	assert.Contains(t, apiErr.Error(), "field: text")
}
