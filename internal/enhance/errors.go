// Package enhance implements the content enhancement proxy: one field's text in,
// one suggested replacement out, delegated to an LLM completion service.
package enhance

import "fmt"

// InvalidParameterError is returned for a blank text, an out-of-range creativity or a disallowed model
type InvalidParameterError struct {
	Field   string
	Message string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// PayloadTooLargeError is returned when the text or instruction exceeds its ceiling
type PayloadTooLargeError struct {
	Field string
	Limit int
	Got   int
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("%s exceeds maximum length (%d characters, got %d)", e.Field, e.Limit, e.Got)
}

// UpstreamTimeoutError is returned when the completion service did not answer in time
type UpstreamTimeoutError struct {
	Timeout string
}

func (e *UpstreamTimeoutError) Error() string {
	return fmt.Sprintf("the AI service took too long to respond (timeout %s)", e.Timeout)
}

// UpstreamError is returned when the completion service failed or is not configured
type UpstreamError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("AI service error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("AI service error: %s", e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// InvalidUpstreamResponseError is returned when the service answered without a usable suggestion
type InvalidUpstreamResponseError struct {
	Message string
	Cause   error
}

func (e *InvalidUpstreamResponseError) Error() string {
	return fmt.Sprintf("invalid response from AI service: %s", e.Message)
}

func (e *InvalidUpstreamResponseError) Unwrap() error {
	return e.Cause
}
