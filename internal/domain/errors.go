package domain

import "errors"

// BusinessError is a rule violation whose message is returned to the client as is.
type BusinessError struct {
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// NewBusinessError creates a BusinessError with the given message.
func NewBusinessError(msg string) *BusinessError {
	return &BusinessError{Message: msg}
}

// AuthError reports a failed credential check.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// NewAuthError creates an AuthError with the given message.
func NewAuthError(msg string) *AuthError {
	return &AuthError{Message: msg}
}

// IsBusinessError reports whether err is, or wraps, a BusinessError.
func IsBusinessError(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}

// IsAuthError reports whether err is, or wraps, an AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
