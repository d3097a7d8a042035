package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-rag/internal/fetch"
	"github.com/jonathan/resume-rag/internal/rewriting"
)

// ErrDecode indicates a request body that is not valid JSON for its type.
type ErrDecode struct {
	Cause error
}

func (e *ErrDecode) Error() string {
	return fmt.Sprintf("invalid request body: %v", e.Cause)
}

func (e *ErrDecode) Unwrap() error {
	return e.Cause
}

// ErrInvalidCredentials indicates a wrong admin password.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid credentials"
}

// ErrAdminDisabled indicates that no admin password or signing secret is configured.
type ErrAdminDisabled struct{}

func (e *ErrAdminDisabled) Error() string {
	return "admin access is not configured"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErrs validator.ValidationErrors
		decodeErr      *ErrDecode
		credsErr       *ErrInvalidCredentials
		disabledErr    *ErrAdminDisabled
		fetchErr       *fetch.Error
		rewriteErr     *rewriting.Error
	)
	switch {
	case errors.As(err, &validationErrs), errors.As(err, &decodeErr):
		return http.StatusBadRequest
	case errors.As(err, &credsErr):
		return http.StatusUnauthorized
	case errors.As(err, &disabledErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &fetchErr), errors.As(err, &rewriteErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
