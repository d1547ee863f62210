package validation

import (
	"fmt"
	"strings"

	"github.com/kbukum/openbatch/errors"
)

// Validator collects validation errors.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// AddValueError adds a field error that carries the offending value.
func (v *Validator) AddValueError(field string, value any, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message, Value: value})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an AppError if there are validation errors, nil otherwise.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}

	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	appErr := errors.Validation(strings.Join(messages, "; "))
	appErr.Details = map[string]any{
		"fields": v.errors,
	}
	return appErr
}

// Err returns an INVALID_FIELD error built from the first violation, with
// every violation listed under the "fields" detail. It returns a nil error
// interface when nothing was recorded.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	first := v.errors[0]
	return errors.InvalidField(first.Field, first.Value, first.Message).
		WithDetail("fields", v.errors)
}

// Required checks if a string is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddValueError(field, value, "is required")
	}
	return v
}

// MaxLength checks if a string is within max length.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	if len(value) > maxLen {
		v.AddValueError(field, value, fmt.Sprintf("must be %d characters or less", maxLen))
	}
	return v
}

// FloatRange checks an optional float lies within [minVal, maxVal].
// A nil value is not checked.
func (v *Validator) FloatRange(field string, value *float64, minVal, maxVal float64) *Validator {
	if value == nil {
		return v
	}
	if *value < minVal || *value > maxVal {
		v.AddValueError(field, *value, fmt.Sprintf("must be between %g and %g", minVal, maxVal))
	}
	return v
}

// IntRange checks an optional int lies within [minVal, maxVal].
func (v *Validator) IntRange(field string, value *int, minVal, maxVal int) *Validator {
	if value == nil {
		return v
	}
	if *value < minVal || *value > maxVal {
		v.AddValueError(field, *value, fmt.Sprintf("must be between %d and %d", minVal, maxVal))
	}
	return v
}

// IntMin checks an optional int is at least minVal.
func (v *Validator) IntMin(field string, value *int, minVal int) *Validator {
	if value == nil {
		return v
	}
	if *value < minVal {
		v.AddValueError(field, *value, fmt.Sprintf("must be at least %d", minVal))
	}
	return v
}

// Positive checks an optional int is strictly greater than zero.
func (v *Validator) Positive(field string, value *int) *Validator {
	if value == nil {
		return v
	}
	if *value <= 0 {
		v.AddValueError(field, *value, "must be greater than 0")
	}
	return v
}

// OneOf checks if a value is one of the allowed values. Empty values are skipped.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddValueError(field, value, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom applies a custom validation condition.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// Required validates a single required field and returns an error if empty.
func Required(field, value string) error {
	return New().Required(field, value).Err()
}
