package application

import (
	"time"

	"github.com/example/room-booking/internal/scheduler"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Email  string
	Name   string
}

// User represents an account exposed by the application services. It never
// carries the stored password.
type User struct {
	ID         string
	Email      string
	Name       string
	Department string
}

// UserCredentials pairs a user with the stored password value.
type UserCredentials struct {
	User     User
	Password string
}

// RegisterInput captures caller provided registration fields.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Department string
}

// Room represents a catalog entry for a bookable meeting room.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	Floor     string
	Amenities []string
}

// Booking status values.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// BookingInput captures caller provided booking fields. Date is YYYY-MM-DD;
// StartTime and EndTime are HH:MM and may arrive unpadded.
type BookingInput struct {
	RoomID      string
	Title       string
	Description string
	Date        string
	StartTime   string
	EndTime     string
}

// Booking represents a persisted room reservation.
type Booking struct {
	ID          string
	UserID      string
	RoomID      string
	Title       string
	Description string
	Date        string
	StartTime   string
	EndTime     string
	Status      string
	RoomName    string
	RoomFloor   string
	// Completed is set on listings when the booking has already ended.
	Completed bool
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// DayAvailability lists the confirmed bookings of a room on a date and the
// free slots left between them.
type DayAvailability struct {
	RoomID   string
	Date     string
	Bookings []Booking
	Slots    []scheduler.Slot
}

// Session is the single logged-in session held by the process.
type Session struct {
	Token     string
	User      User
	ExpiresAt time.Time
}
