package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool *ConnectionPool
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

const selectRoomSQL = `SELECT id, name, capacity, floor, amenities FROM rooms`

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}
	room, err := scanRoom(r.pool.DB().QueryRowContext(ctx, selectRoomSQL+` WHERE id = ?`, id))
	if err != nil {
		return persistence.Room{}, err
	}
	return room, nil
}

// ListRooms returns every room ordered by ID. A row with malformed amenities
// fails the whole read.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := r.pool.DB().QueryContext(ctx, selectRoomSQL+` ORDER BY id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return rooms, nil
}

// SeedRooms inserts rooms only when the table is empty and reports how many
// rows were written.
func (r *RoomRepository) SeedRooms(ctx context.Context, rooms []persistence.Room) (int, error) {
	inserted := 0
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count); err != nil {
			return mapError(err)
		}
		if count > 0 {
			return nil
		}
		for _, room := range rooms {
			if err := insertRoom(ctx, tx, room); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func insertRoom(ctx context.Context, q queryer, room persistence.Room) error {
	if room.ID == "" || room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}
	amenities, err := encodeAmenities(room.Amenities)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO rooms (id, name, capacity, floor, amenities) VALUES (?, ?, ?, ?, ?)`,
		room.ID, room.Name, room.Capacity, room.Floor, amenities)
	if err != nil {
		return fmt.Errorf("insert room %s: %w", room.ID, mapError(err))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var (
		room      persistence.Room
		amenities sql.NullString
	)
	if err := row.Scan(&room.ID, &room.Name, &room.Capacity, &room.Floor, &amenities); err != nil {
		return persistence.Room{}, mapError(err)
	}
	decoded, err := decodeAmenities(amenities.String)
	if err != nil {
		return persistence.Room{}, fmt.Errorf("room %s: %w", room.ID, err)
	}
	room.Amenities = decoded
	return room, nil
}
