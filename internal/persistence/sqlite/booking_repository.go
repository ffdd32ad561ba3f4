package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	pool *ConnectionPool
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

const selectBookingSQL = `
	SELECT b.id, b.user_id, b.room_id, b.title, COALESCE(b.description, ''),
	       b.date, b.start_time, b.end_time, b.status,
	       COALESCE(r.name, ''), COALESCE(r.floor, '')
	FROM bookings b
	LEFT JOIN rooms r ON r.id = b.room_id`

// CreateBooking checks for an overlapping confirmed booking and inserts the
// new one inside a single write transaction. The stored booking is always
// confirmed regardless of booking.Status.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error) {
	if booking.ID == "" || booking.UserID == "" || booking.RoomID == "" {
		return persistence.Booking{}, persistence.ErrConstraintViolation
	}

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var conflict persistence.ConflictError
		err := tx.QueryRowContext(ctx, `
			SELECT id, start_time, end_time FROM bookings
			WHERE room_id = ? AND date = ? AND status = ?
			  AND start_time < ? AND end_time > ?
			ORDER BY start_time
			LIMIT 1`,
			booking.RoomID, booking.Date, persistence.BookingStatusConfirmed,
			booking.EndTime, booking.StartTime,
		).Scan(&conflict.BookingID, &conflict.StartTime, &conflict.EndTime)
		switch {
		case err == nil:
			return &conflict
		case !errors.Is(err, sql.ErrNoRows):
			return mapError(err)
		}

		var description any
		if booking.Description != "" {
			description = booking.Description
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO bookings (id, user_id, room_id, title, description, date, start_time, end_time, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			booking.ID, booking.UserID, booking.RoomID, booking.Title, description,
			booking.Date, booking.StartTime, booking.EndTime, persistence.BookingStatusConfirmed)
		if err != nil {
			mapped := mapError(err)
			if errors.Is(mapped, persistence.ErrBookingConflict) {
				return &persistence.ConflictError{}
			}
			return mapped
		}
		return nil
	})
	if err != nil {
		var conflict *persistence.ConflictError
		if errors.As(err, &conflict) {
			return persistence.Booking{}, conflict
		}
		return persistence.Booking{}, fmt.Errorf("create booking: %w", err)
	}

	return r.GetBooking(ctx, booking.ID)
}

// GetBooking retrieves a booking by ID, including cancelled ones.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return scanBooking(r.pool.DB().QueryRowContext(ctx, selectBookingSQL+` WHERE b.id = ?`, id))
}

// ListUserBookings returns the user's confirmed bookings ordered by date and
// start time.
func (r *BookingRepository) ListUserBookings(ctx context.Context, userID string) ([]persistence.Booking, error) {
	return r.list(ctx, selectBookingSQL+`
		WHERE b.user_id = ? AND b.status = ?
		ORDER BY b.date, b.start_time`,
		userID, persistence.BookingStatusConfirmed)
}

// ListDayBookings returns the confirmed bookings of a room on a date ordered
// by start time.
func (r *BookingRepository) ListDayBookings(ctx context.Context, roomID, date string) ([]persistence.Booking, error) {
	return r.list(ctx, selectBookingSQL+`
		WHERE b.room_id = ? AND b.date = ? AND b.status = ?
		ORDER BY b.start_time`,
		roomID, date, persistence.BookingStatusConfirmed)
}

// CancelBooking marks a booking cancelled. Cancelling an already cancelled
// booking succeeds; an unknown ID returns persistence.ErrNotFound.
func (r *BookingRepository) CancelBooking(ctx context.Context, id string) error {
	result, err := r.pool.DB().ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ?`,
		persistence.BookingStatusCancelled, id)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", mapError(err))
	}
	return rowsAffected(result)
}

// DeleteBooking removes a booking row. An unknown ID returns
// persistence.ErrNotFound.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id string) error {
	result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", mapError(err))
	}
	return rowsAffected(result)
}

// PurgeCancelledBookings deletes cancelled bookings dated strictly before the
// given YYYY-MM-DD date. An empty date purges every cancelled booking.
func (r *BookingRepository) PurgeCancelledBookings(ctx context.Context, before string) (int64, error) {
	query := `DELETE FROM bookings WHERE status = ?`
	args := []any{persistence.BookingStatusCancelled}
	if before != "" {
		query += ` AND date < ?`
		args = append(args, before)
	}
	result, err := r.pool.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge cancelled bookings: %w", mapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]persistence.Booking, error) {
	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return bookings, nil
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var b persistence.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.RoomID, &b.Title, &b.Description,
		&b.Date, &b.StartTime, &b.EndTime, &b.Status, &b.RoomName, &b.RoomFloor)
	if err != nil {
		return persistence.Booking{}, mapError(err)
	}
	return b, nil
}
