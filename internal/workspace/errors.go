// Package workspace holds the operator's in-memory working copy of the CV data.
package workspace

import (
	"fmt"
	"strings"
)

// ParseError is returned when JSON-editor input cannot be applied. The workspace is left unchanged.
type ParseError struct {
	Resource string
	Message  string
	Cause    error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid %s JSON: %s: %v", e.Resource, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid %s JSON: %s", e.Resource, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// UnknownFieldError is returned by SetProfileField for a field that is not a scalar profile field
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown profile field %q, expected one of: %s", e.Field, strings.Join(profileFields(), ", "))
}
