package model

import (
	"errors"
	"fmt"
)

// ErrStore marks failures of the persistence layer.
var ErrStore = errors.New("store failure")

// ValidationErrorKind classifies client-correctable submission errors.
type ValidationErrorKind string

const (
	// KindMissingRequiredField is reported when name, email or registration type is empty.
	KindMissingRequiredField ValidationErrorKind = "missing_required_field"
	// KindInvalidRegistrationType is reported when the registration type is not a known value.
	KindInvalidRegistrationType ValidationErrorKind = "invalid_registration_type"
	// KindMissingCompany is reported for professionals without a company.
	KindMissingCompany ValidationErrorKind = "missing_company"
)

// ValidationError is returned when a submission is rejected before reaching the store.
type ValidationError struct {
	Kind    ValidationErrorKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewErrMissingRequiredField creates a validation error for an empty required field.
func NewErrMissingRequiredField(field string) *ValidationError {
	return &ValidationError{
		Kind:    KindMissingRequiredField,
		Field:   field,
		Message: "Name, email, and registration type are required",
	}
}

// NewErrInvalidRegistrationType creates a validation error for an unknown registration type.
func NewErrInvalidRegistrationType() *ValidationError {
	return &ValidationError{
		Kind:    KindInvalidRegistrationType,
		Field:   "registration_type",
		Message: "Registration type must be either student or professional",
	}
}

// NewErrMissingCompany creates a validation error for a professional without a company.
func NewErrMissingCompany() *ValidationError {
	return &ValidationError{
		Kind:    KindMissingCompany,
		Field:   "company",
		Message: "Company is required for professional registration",
	}
}

// StoreError wraps err so that errors.Is(result, ErrStore) holds.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}
