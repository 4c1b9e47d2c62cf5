package validation

import (
	"fmt"
	"strings"

	"github.com/kbukum/routekit/errors"
)

// Validator collects validation errors.
type Validator struct {
	errors []FieldError
	code   errors.ErrorCode
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a Validator reporting INVALID_CONFIG.
func New() *Validator {
	return NewWithCode(errors.ErrCodeInvalidConfig)
}

// NewWithCode creates a Validator whose Err carries code.
func NewWithCode(code errors.ErrorCode) *Validator {
	return &Validator{code: code}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// Check adds a field error when condition is false.
func (v *Validator) Check(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Err returns an AppError listing every collected problem, or nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}

	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		if e.Field == "" {
			messages[i] = e.Message
			continue
		}
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	return errors.New(v.code, strings.Join(messages, "; ")).
		WithDetail("fields", v.errors)
}
