package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError collects per-field validation failures
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(v.Errors))
	for field, message := range v.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", field, message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AddError records a failure for a field
func (v *ValidationError) AddError(field, message string) {
	if v.Errors == nil {
		v.Errors = make(map[string]string)
	}
	v.Errors[field] = message
}

// HasErrors reports whether any failure was recorded
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// NewValidationError converts validator.ValidationErrors into a ValidationError
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	ve := &ValidationError{Errors: make(map[string]string)}
	for _, fieldErr := range errs {
		ve.Errors[strings.ToLower(fieldErr.Field())] = fieldErrorMessage(fieldErr)
	}
	return ve
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "latitude":
		return "must be a valid latitude"
	case "longitude":
		return "must be a valid longitude"
	case "turno":
		return "must be one of mañana, tarde, noche"
	case "user_role":
		return "must be a known role"
	case "zona":
		return "must be between 1 and 7"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
