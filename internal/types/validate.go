package types

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared struct validator
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateProfile checks field-level constraints that the JSON schema cannot express
func ValidateProfile(p *UserProfile) error {
	if err := Validator().Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", describe(err))
	}
	return nil
}

// describe turns validator errors into a single readable error
func describe(err error) error {
	if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
		ve := ves[0]
		return fmt.Errorf("%s failed %q check", ve.Namespace(), ve.Tag())
	}
	return err
}
