// Package media validates uploaded profile images and writes their resized derivatives.
package media

import "fmt"

// ValidationError is returned when an upload is rejected before any processing
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid upload: %s", e.Message)
}

// ProcessingError is returned when resizing or writing a derivative fails
type ProcessingError struct {
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("image processing failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("image processing failed: %s", e.Message)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}
