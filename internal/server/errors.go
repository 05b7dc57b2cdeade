// Package server provides the HTTP REST API for the CV admin surface.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cv-admin/internal/enhance"
	"github.com/jonathan/cv-admin/internal/media"
	"github.com/jonathan/cv-admin/internal/store"
	"github.com/jonathan/cv-admin/internal/workspace"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnauthorized indicates a missing or invalid session
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message == "" {
		return "authentication required"
	}
	return e.Message
}

// errorMapping ties an error type to its response code and status
type errorMapping struct {
	code   string
	status func(error) int
	match  func(error) bool
}

func is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func fixed(status int) func(error) int {
	return func(error) int { return status }
}

var errorMappings = []errorMapping{
	{"ModeRestricted", fixed(http.StatusForbidden), is[*store.ModeRestrictedError]},
	{"InvalidTarget", fixed(http.StatusBadRequest), is[*store.InvalidTargetError]},
	{"InvalidPayload", fixed(http.StatusBadRequest), is[*store.PayloadError]},
	{"Conflict", fixed(http.StatusConflict), is[*store.ConflictError]},
	{"WriteFailed", fixed(http.StatusInternalServerError), is[*store.WriteError]},
	{"LoadFailed", fixed(http.StatusInternalServerError), is[*store.LoadError]},
	{"InvalidParameter", fixed(http.StatusBadRequest), is[*enhance.InvalidParameterError]},
	{"PayloadTooLarge", fixed(http.StatusRequestEntityTooLarge), is[*enhance.PayloadTooLargeError]},
	{"UpstreamTimeout", fixed(http.StatusGatewayTimeout), is[*enhance.UpstreamTimeoutError]},
	{"InvalidUpstreamResponse", fixed(http.StatusBadGateway), is[*enhance.InvalidUpstreamResponseError]},
	{"UpstreamError", upstreamStatus, is[*enhance.UpstreamError]},
	{"ValidationFailed", fixed(http.StatusBadRequest), is[*media.ValidationError]},
	{"ProcessingFailed", fixed(http.StatusInternalServerError), is[*media.ProcessingError]},
	{"ParseError", fixed(http.StatusBadRequest), is[*workspace.ParseError]},
	{"InvalidParameter", fixed(http.StatusBadRequest), is[*workspace.UnknownFieldError]},
	{"InvalidParameter", fixed(http.StatusBadRequest), is[*ErrValidation]},
	{"Unauthorized", fixed(http.StatusUnauthorized), is[*ErrUnauthorized]},
}

// upstreamStatus passes through a 429 so clients can back off; any other upstream failure is a bad gateway.
func upstreamStatus(err error) int {
	var upstream *enhance.UpstreamError
	if errors.As(err, &upstream) && upstream.StatusCode == http.StatusTooManyRequests {
		return http.StatusTooManyRequests
	}
	return http.StatusBadGateway
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	for _, m := range errorMappings {
		if m.match(err) {
			return m.status(err)
		}
	}
	return http.StatusInternalServerError
}

// ErrorCode returns the stable error name clients switch on
func ErrorCode(err error) string {
	for _, m := range errorMappings {
		if m.match(err) {
			return m.code
		}
	}
	return "InternalError"
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
