package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
)

// DateLayout is the booking date format.
const DateLayout = "2006-01-02"

var bookingCounter uint64

// referenceTime is a Monday morning before opening hours.
var referenceTime = time.Date(2030, time.March, 11, 8, 30, 0, 0, time.UTC)

// ReferenceTime returns the baseline instant used by fixtures and NewClock.
func ReferenceTime() time.Time {
	return referenceTime
}

// Rooms returns the default room catalog as persistence records.
func Rooms() []persistence.Room {
	defaults := application.DefaultRooms()
	rooms := make([]persistence.Room, 0, len(defaults))
	for _, room := range defaults {
		rooms = append(rooms, persistence.Room{
			ID:        room.ID,
			Name:      room.Name,
			Capacity:  room.Capacity,
			Floor:     room.Floor,
			Amenities: append([]string(nil), room.Amenities...),
		})
	}
	return rooms
}

// UserOption configures a user fixture.
type UserOption func(*persistence.User)

// NewUser returns a user record with id and a derived email, name, and plain
// password "password".
func NewUser(id string, opts ...UserOption) persistence.User {
	user := persistence.User{
		ID:         id,
		Email:      fmt.Sprintf("%s@example.com", id),
		Name:       fmt.Sprintf("User %s", id),
		Password:   "password",
		Department: "General",
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithEmail overrides the user email.
func WithEmail(email string) UserOption {
	return func(u *persistence.User) { u.Email = email }
}

// WithPassword overrides the stored password value.
func WithPassword(password string) UserOption {
	return func(u *persistence.User) { u.Password = password }
}

// BookingOption configures a booking fixture.
type BookingOption func(*persistence.Booking)

// NewBooking returns a confirmed one-hour booking of room "1" starting at
// 10:00 on the reference date.
func NewBooking(userID string, opts ...BookingOption) persistence.Booking {
	idx := atomic.AddUint64(&bookingCounter, 1)
	booking := persistence.Booking{
		ID:        fmt.Sprintf("booking-%03d", idx),
		UserID:    userID,
		RoomID:    "1",
		Title:     fmt.Sprintf("Meeting %03d", idx),
		Date:      referenceTime.Format(DateLayout),
		StartTime: "10:00",
		EndTime:   "11:00",
		Status:    persistence.BookingStatusConfirmed,
	}
	for _, opt := range opts {
		opt(&booking)
	}
	return booking
}

// InRoom sets the booked room.
func InRoom(roomID string) BookingOption {
	return func(b *persistence.Booking) { b.RoomID = roomID }
}

// OnDate sets the booking date.
func OnDate(date string) BookingOption {
	return func(b *persistence.Booking) { b.Date = date }
}

// Between sets the start and end times.
func Between(start, end string) BookingOption {
	return func(b *persistence.Booking) {
		b.StartTime = start
		b.EndTime = end
	}
}

// BookingInput returns a request that passes validation when the clock is at
// ReferenceTime: room "1", tomorrow, 10:00 to 11:00.
func BookingInput() application.BookingInput {
	return application.BookingInput{
		RoomID:    "1",
		Title:     "Planning",
		Date:      referenceTime.AddDate(0, 0, 1).Format(DateLayout),
		StartTime: "10:00",
		EndTime:   "11:00",
	}
}
