// Package server provides the HTTP REST API for the contactlens pipeline.
package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/contactlens/internal/extraction"
	"github.com/jonathan/contactlens/internal/pipeline"
)

// HTTPStatus returns the appropriate HTTP status code for an error.
// Model-call failures never crash the process; they surface as gateway
// errors, everything user-correctable as 4xx.
func HTTPStatus(err error) int {
	var apiErr *extraction.APICallError
	var parseErr *extraction.ParseError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, pipeline.ErrBusy):
		return http.StatusTooManyRequests
	case errors.Is(err, pipeline.ErrNoDraft):
		return http.StatusConflict
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest
	case errors.As(err, &apiErr), errors.As(err, &parseErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
