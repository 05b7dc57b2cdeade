// Package store reads and writes the three CV data files.
package store

import "fmt"

// ModeRestrictedError is returned when the gateway is used outside development mode
type ModeRestrictedError struct {
	Mode string
}

func (e *ModeRestrictedError) Error() string {
	if e.Mode == "" {
		return "admin data access is only available in development mode"
	}
	return fmt.Sprintf("admin data access is only available in development mode (current: %s)", e.Mode)
}

// InvalidTargetError is returned for a save target outside the allow-list
type InvalidTargetError struct {
	Target string
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target %q", e.Target)
}

// PayloadError is returned when a save payload cannot be decoded or fails validation
type PayloadError struct {
	Message string
	Cause   error
}

func (e *PayloadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid payload: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid payload: %s", e.Message)
}

func (e *PayloadError) Unwrap() error {
	return e.Cause
}

// ConflictError is returned when the stored file no longer matches the expected version
type ConflictError struct {
	Target   string
	Expected string
	Actual   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s changed since it was loaded (expected version %s, found %s)", e.Target, short(e.Expected), short(e.Actual))
}

// WriteError is returned when the underlying write did not complete
type WriteError struct {
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed for %s: %v", e.Path, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

// LoadError represents an error reading or parsing a data file
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load error: %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("load error: %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

func short(version string) string {
	if version == "" {
		return "<none>"
	}
	if len(version) > 12 {
		return version[:12]
	}
	return version
}
