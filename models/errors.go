package models

import (
	"errors"
	"strings"
)

// Domain errors. Services wrap these with fmt.Errorf("...: %w", err) and the
// controllers map them to HTTP status codes with errors.Is.
var (
	ErrNotFound                = errors.New("not found")
	ErrNotAuthorized           = errors.New("not authorized")
	ErrAlreadyExists           = errors.New("already exists")
	ErrConflict                = errors.New("concurrent modification")
	ErrDuplicateApplication    = errors.New("user already applied to this opportunity")
	ErrOpportunityNotActive    = errors.New("opportunity is not accepting applications")
	ErrOpportunityFull         = errors.New("opportunity has no available slots")
	ErrInvalidTransition       = errors.New("invalid application status transition")
	ErrHasApplications         = errors.New("opportunity has applications and cannot be deleted")
	ErrBadgeAlreadyAwarded     = errors.New("badge already awarded to user")
	ErrEditWindowExpired       = errors.New("message can no longer be edited")
	ErrMessageDeleted          = errors.New("message was deleted")
	ErrEmailTaken              = errors.New("email is already registered")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrAccountInactive         = errors.New("account is not active")
	ErrOrganizationNotVerified = errors.New("organization is not verified")
	ErrPaymentFailed           = errors.New("payment could not be completed")
	ErrInvalidSignature        = errors.New("webhook signature verification failed")
	ErrProvisioningBusy        = errors.New("provisioning is in progress")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports malformed or missing input
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(msg string, flds ...FieldError) error {
	return &ValidationError{Err: errors.New(msg), Fields: flds}
}

func (err *ValidationError) Error() string {
	if err.Err == nil {
		return "validation failed"
	}
	if len(err.Fields) == 0 {
		return err.Err.Error()
	}
	parts := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		parts = append(parts, f.Field+": "+f.Error)
	}
	return err.Err.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (err *ValidationError) Unwrap() error {
	return err.Err
}

// IsValidationError reports whether err carries a *ValidationError
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
