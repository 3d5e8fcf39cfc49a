package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/content-assistant/internal/assistant"
	"github.com/jonathan/content-assistant/internal/types"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "id", Message: "must be a UUID"}
	assert.Equal(t, "validation error: id - must be a UUID", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid request", fmt.Errorf("%w: %w", assistant.ErrInvalidRequest, types.ErrNoInput), http.StatusBadRequest},
		{"no input", types.ErrNoInput, http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: abc", assistant.ErrNotFound), http.StatusNotFound},
		{"no content", fmt.Errorf("Extract Quotes failed: %w", assistant.ErrNoContent), http.StatusUnprocessableEntity},
		{"llm unavailable", assistant.ErrLLMUnavailable, http.StatusServiceUnavailable},
		{"store unavailable", assistant.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"timeout", fmt.Errorf("generate: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
