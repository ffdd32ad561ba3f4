package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/room-booking/internal/persistence"
)

// RoomRepository captures the persistence operations needed by the service.
type RoomRepository interface {
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
}

// RoomService exposes the read-only room catalog.
type RoomService struct {
	rooms  RoomRepository
	logger *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms RoomRepository) *RoomService {
	return NewRoomServiceWithLogger(rooms, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, logger *slog.Logger) *RoomService {
	return &RoomService{rooms: rooms, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// ListRooms returns the room catalog in store order. Any read failure,
// including a room with malformed amenities, is logged and yields an empty
// catalog.
func (s *RoomService) ListRooms(ctx context.Context) []Room {
	if s == nil || s.rooms == nil {
		return []Room{}
	}

	logger := s.loggerWith(ctx, "ListRooms")

	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err),
			"malformed", errors.Is(err, persistence.ErrMalformedRecord))
		return []Room{}
	}

	out := make([]Room, len(rooms))
	copy(out, rooms)
	logger.With("result_count", len(out)).DebugContext(ctx, "rooms listed")
	return out
}

// GetRoom returns a single room.
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	room, err = s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		err = mapRoomRepoError(err)
		s.loggerWith(ctx, "GetRoom", "room_id", roomID).
			ErrorContext(ctx, "failed to load room", "error", err, "error_kind", ErrorKind(err))
	}
	return
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
