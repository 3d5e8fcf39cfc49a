package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/content-assistant/internal/assistant"
	"github.com/jonathan/content-assistant/internal/types"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	var fieldErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &fieldErrs),
		errors.Is(err, assistant.ErrInvalidRequest),
		errors.Is(err, types.ErrNoInput):
		return http.StatusBadRequest
	case errors.Is(err, assistant.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, assistant.ErrNoContent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, assistant.ErrLLMUnavailable),
		errors.Is(err, assistant.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
