package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/hash-resume/internal/document"
	"github.com/jonathan/hash-resume/internal/fetch"
	"github.com/jonathan/hash-resume/internal/payment"
	"github.com/jonathan/hash-resume/internal/rendering"
	"github.com/jonathan/hash-resume/internal/reorder"
	"github.com/jonathan/hash-resume/internal/schemas"
	"github.com/jonathan/hash-resume/internal/session"
	"github.com/jonathan/hash-resume/internal/storage"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a missing resource
type ErrNotFound struct {
	Resource string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ErrConflict indicates a request that conflicts with the current state
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation    *ErrValidation
		notFound      *ErrNotFound
		conflict      *ErrConflict
		fieldErr      *document.FieldError
		referenceErr  *payment.ValidationError
		gatewayErr    *payment.GatewayError
		fetchErr      *fetch.Error
		unsupported   *rendering.UnsupportedFormatError
		schemaErr     *schemas.ValidationError
		validatorErrs validator.ValidationErrors
	)

	switch {
	case errors.As(err, &validation), errors.As(err, &fieldErr), errors.As(err, &referenceErr),
		errors.As(err, &unsupported), errors.As(err, &validatorErrs), errors.As(err, &schemaErr),
		errors.Is(err, reorder.ErrNotHandle), errors.Is(err, reorder.ErrUnknownList):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrExportLocked):
		return http.StatusPaymentRequired
	case errors.As(err, &notFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &conflict), errors.Is(err, session.ErrBusy), errors.Is(err, payment.ErrInvalidState),
		errors.Is(err, payment.ErrSuperseded), errors.Is(err, reorder.ErrDragInProgress):
		return http.StatusConflict
	case errors.As(err, &gatewayErr), errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.Is(err, session.ErrNoJobFetcher):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
