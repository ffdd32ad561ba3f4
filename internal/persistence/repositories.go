package persistence

import "context"

// UserRepository stores registered accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserCredentialsByEmail(ctx context.Context, email string) (User, error)
	SeedUsers(ctx context.Context, users []User) (int, error)
}

// RoomRepository exposes the room catalog.
type RoomRepository interface {
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	SeedRooms(ctx context.Context, rooms []Room) (int, error)
}

// BookingRepository stores bookings and enforces the no-overlap invariant for
// confirmed bookings of a room and date.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]Booking, error)
	ListDayBookings(ctx context.Context, roomID, date string) ([]Booking, error)
	CancelBooking(ctx context.Context, id string) error
	DeleteBooking(ctx context.Context, id string) error
	PurgeCancelledBookings(ctx context.Context, before string) (int64, error)
}

// StateRepository is a small key/value store for process state such as the
// current login session.
type StateRepository interface {
	GetState(ctx context.Context, keys ...string) (map[string]string, error)
	PutState(ctx context.Context, entries map[string]string) error
	DeleteState(ctx context.Context, keys ...string) error
}
