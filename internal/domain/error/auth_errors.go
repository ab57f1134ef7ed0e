// Package error defines domain-specific errors for the Campus Coins application.
package error

import "errors"

// Account and credential domain errors.
var (
	// ErrDuplicateEmail is returned when the email is already registered for the role.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrDuplicateSecondaryID is returned when the role-specific identifier is already registered.
	ErrDuplicateSecondaryID = errors.New("identifier already registered")

	// ErrInvalidCredentials is returned for both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnknownRole is returned when a role is outside STUDENT, TEACHER, COMPANY.
	ErrUnknownRole = errors.New("unknown role")

	// ErrAccountNotFound is returned when a reset targets an email absent from the role's store.
	ErrAccountNotFound = errors.New("account not found")

	// ErrMissingField is returned when a required field is absent or blank.
	ErrMissingField = errors.New("required field missing")
)

// AuthErrorCode defines error codes for account errors.
// Format: AUTH-XXYYYY where XX is category and YYYY is specific error.
type AuthErrorCode string

const (
	// Registration errors (01XXXX)
	ErrCodeEmailExists       AuthErrorCode = "AUTH-010001"
	ErrCodeMissingFields     AuthErrorCode = "AUTH-010005"
	ErrCodeSecondaryIDExists AuthErrorCode = "AUTH-010006"

	// Login errors (02XXXX)
	ErrCodeInvalidCredentials AuthErrorCode = "AUTH-020001"
	ErrCodeUnknownRole        AuthErrorCode = "AUTH-020004"

	// Credential reset errors (04XXXX)
	ErrCodeAccountNotFound AuthErrorCode = "AUTH-040003"
)

// AuthError represents an account error with code and message.
type AuthError struct {
	Code    AuthErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError creates a new AuthError with the given code and message.
func NewAuthError(code AuthErrorCode, message string, err error) *AuthError {
	return &AuthError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// DuplicateError wraps a duplicate sentinel into its coded AuthError.
// Any other error is returned unchanged.
func DuplicateError(err error) error {
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return NewAuthError(ErrCodeEmailExists, "email already registered", ErrDuplicateEmail)
	case errors.Is(err, ErrDuplicateSecondaryID):
		return NewAuthError(ErrCodeSecondaryIDExists, "identifier already registered", ErrDuplicateSecondaryID)
	default:
		return err
	}
}
