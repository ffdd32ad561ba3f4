package main

import (
	"context"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
)

type bookingRepositoryAdapter struct {
	repo persistence.BookingRepository
}

func newBookingRepositoryAdapter(repo persistence.BookingRepository) *bookingRepositoryAdapter {
	return &bookingRepositoryAdapter{repo: repo}
}

func (a *bookingRepositoryAdapter) CreateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	stored, err := a.repo.CreateBooking(ctx, toPersistenceBooking(booking))
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	stored, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) ListUserBookings(ctx context.Context, userID string) ([]application.Booking, error) {
	models, err := a.repo.ListUserBookings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(models), nil
}

func (a *bookingRepositoryAdapter) ListDayBookings(ctx context.Context, roomID, date string) ([]application.Booking, error) {
	models, err := a.repo.ListDayBookings(ctx, roomID, date)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(models), nil
}

func (a *bookingRepositoryAdapter) CancelBooking(ctx context.Context, id string) error {
	return a.repo.CancelBooking(ctx, id)
}

func (a *bookingRepositoryAdapter) DeleteBooking(ctx context.Context, id string) error {
	return a.repo.DeleteBooking(ctx, id)
}

func (a *bookingRepositoryAdapter) PurgeCancelledBookings(ctx context.Context, before string) (int64, error) {
	return a.repo.PurgeCancelledBookings(ctx, before)
}

type roomRepositoryAdapter struct {
	repo persistence.RoomRepository
}

func newRoomRepositoryAdapter(repo persistence.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

// userRepositoryAdapter serves both the user service and the auth service's
// credential lookups.
type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.UserCredentials) (application.User, error) {
	stored, err := a.repo.CreateUser(ctx, toPersistenceUser(user))
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserCredentialsByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{User: toApplicationUser(stored), Password: stored.Password}, nil
}

type seederAdapter struct {
	users persistence.UserRepository
	rooms persistence.RoomRepository
}

func newSeederAdapter(users persistence.UserRepository, rooms persistence.RoomRepository) *seederAdapter {
	return &seederAdapter{users: users, rooms: rooms}
}

func (a *seederAdapter) SeedRooms(ctx context.Context, rooms []application.Room) (int, error) {
	models := make([]persistence.Room, 0, len(rooms))
	for _, room := range rooms {
		models = append(models, toPersistenceRoom(room))
	}
	return a.rooms.SeedRooms(ctx, models)
}

func (a *seederAdapter) SeedUsers(ctx context.Context, users []application.UserCredentials) (int, error) {
	models := make([]persistence.User, 0, len(users))
	for _, user := range users {
		models = append(models, toPersistenceUser(user))
	}
	return a.users.SeedUsers(ctx, models)
}

func toPersistenceBooking(b application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:          b.ID,
		UserID:      b.UserID,
		RoomID:      b.RoomID,
		Title:       b.Title,
		Description: b.Description,
		Date:        b.Date,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      b.Status,
	}
}

func toApplicationBooking(b persistence.Booking) application.Booking {
	return application.Booking{
		ID:          b.ID,
		UserID:      b.UserID,
		RoomID:      b.RoomID,
		Title:       b.Title,
		Description: b.Description,
		Date:        b.Date,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      b.Status,
		RoomName:    b.RoomName,
		RoomFloor:   b.RoomFloor,
	}
}

func toApplicationBookings(models []persistence.Booking) []application.Booking {
	bookings := make([]application.Booking, 0, len(models))
	for _, model := range models {
		bookings = append(bookings, toApplicationBooking(model))
	}
	return bookings
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		ID:        room.ID,
		Name:      room.Name,
		Capacity:  room.Capacity,
		Floor:     room.Floor,
		Amenities: append([]string(nil), room.Amenities...),
	}
}

func toApplicationRoom(room persistence.Room) application.Room {
	return application.Room{
		ID:        room.ID,
		Name:      room.Name,
		Capacity:  room.Capacity,
		Floor:     room.Floor,
		Amenities: append([]string{}, room.Amenities...),
	}
}

func toPersistenceUser(user application.UserCredentials) persistence.User {
	return persistence.User{
		ID:         user.User.ID,
		Email:      user.User.Email,
		Name:       user.User.Name,
		Password:   user.Password,
		Department: user.User.Department,
	}
}

func toApplicationUser(user persistence.User) application.User {
	return application.User{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Department: user.Department,
	}
}
