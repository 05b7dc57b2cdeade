package llm

import "fmt"

// StatusError is returned when the provider answered with a non-success status
type StatusError struct {
	Provider   Provider
	StatusCode int
	Message    string
	Cause      error
}

func (e *StatusError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.Cause
}

// ResponseError is returned when the provider answered without usable text
type ResponseError struct {
	Provider Provider
	Message  string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("invalid %s response: %s", e.Provider, e.Message)
}

// NotConfiguredError is returned when no API key is available for the provider
type NotConfiguredError struct {
	Provider Provider
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("%s API key is not configured", e.Provider)
}
