package app

import (
	"errors"
	"strings"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrAccountNotFound   = errors.New("account not found")
	ErrTaskNotFound      = errors.New("task not found")
)

// ValidationError aggregates every rule an input broke.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Reasons, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationReasons returns the reasons carried by err, if any.
func ValidationReasons(err error) []string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Reasons
	}
	return nil
}
