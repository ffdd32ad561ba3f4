package application

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a registration collides with an existing email.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned when login credentials do not match a user.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when a stored or presented session token is no longer valid.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrBookingConflict is returned when a booking overlaps a confirmed booking.
	ErrBookingConflict = errors.New("application: booking conflict")
)

// ConflictError carries the confirmed interval that blocked a booking.
type ConflictError struct {
	StartTime string
	EndTime   string
}

// Error implements the error interface with a user-facing message.
func (e *ConflictError) Error() string {
	if e == nil || e.StartTime == "" || e.EndTime == "" {
		return "Room is already booked for the selected time"
	}
	return fmt.Sprintf("Room is already booked from %s to %s", e.StartTime, e.EndTime)
}

// Is reports ErrBookingConflict as the error kind.
func (e *ConflictError) Is(target error) bool {
	return target == ErrBookingConflict
}

// ValidationError captures field level validation issues that callers can surface to users.
// Code identifies the first rule that failed; Message is its user-facing text.
type ValidationError struct {
	Code        string
	Message     string
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if v.Message != "" {
		return v.Message
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && (v.Code != "" || len(v.FieldErrors) > 0)
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

func ruleViolation(code, field, message string) *ValidationError {
	vErr := &ValidationError{Code: code, Message: message}
	vErr.add(field, message)
	return vErr
}
