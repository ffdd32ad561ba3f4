package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a uniqueness constraint rejects a write.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a CHECK or NOT NULL constraint rejects a write.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a write references a missing parent row.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrBookingConflict is returned when a booking overlaps a confirmed booking.
	ErrBookingConflict = errors.New("persistence: booking conflict")
	// ErrMalformedRecord is returned when a stored value cannot be decoded.
	ErrMalformedRecord = errors.New("persistence: malformed record")
	// ErrBusy is returned when the store could not obtain a lock in time.
	ErrBusy = errors.New("persistence: store busy")
)

// ConflictError identifies the confirmed booking interval that blocked a write.
type ConflictError struct {
	BookingID string
	StartTime string
	EndTime   string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e == nil {
		return ErrBookingConflict.Error()
	}
	if e.StartTime == "" || e.EndTime == "" {
		return "Room is already booked for the selected time"
	}
	return fmt.Sprintf("Room is already booked from %s to %s", e.StartTime, e.EndTime)
}

// Is reports ErrBookingConflict as the error kind.
func (e *ConflictError) Is(target error) bool {
	return target == ErrBookingConflict
}
