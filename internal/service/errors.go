package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("authentication credentials were not provided")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")

	ErrUserDeletionDisabled = fmt.Errorf("%w: user deletion is disabled", ErrForbidden)

	// ErrAdminNameTaken is returned by EnsureAdmin when the name is held by a standard user.
	ErrAdminNameTaken = errors.New("admin username is taken by a non-admin account")
)

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
