package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnauthorized       = errors.New("not authenticated")
	ErrForbidden          = errors.New("not a participant of this match")
	ErrProfileExists      = errors.New("profile already exists")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileIncomplete  = errors.New("complete your profile first")
	ErrMatchNotFound      = errors.New("match not found")
	ErrAlreadySwiped      = errors.New("already swiped on this profile")
	ErrSwipeInFlight      = errors.New("swipe already in progress")
)

// ValidationError is returned before any store call when input is rejected
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a *ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
