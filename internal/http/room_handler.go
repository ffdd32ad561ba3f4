package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/scheduler"
)

type roomService interface {
	ListRooms(ctx context.Context) []application.Room
	GetRoom(ctx context.Context, roomID string) (application.Room, error)
}

type availabilityService interface {
	DayAvailability(ctx context.Context, roomID, date string) (application.DayAvailability, error)
}

// RoomHandler serves the room catalog and per-day availability.
type RoomHandler struct {
	rooms     roomService
	bookings  availabilityService
	today     func() string
	responder responder
	logger    *slog.Logger
}

// NewRoomHandler builds a RoomHandler. today returns the default date for
// availability queries as YYYY-MM-DD.
func NewRoomHandler(rooms roomService, bookings availabilityService, today func() string, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{rooms: rooms, bookings: bookings, today: today, responder: newResponder(base), logger: base}
}

func (h *RoomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoomHandler", operation, attrs...)
}

// List returns every room. A failed read yields an empty list.
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.rooms == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rooms := h.rooms.ListRooms(r.Context())
	resp := roomListResponse{Rooms: make([]roomDTO, 0, len(rooms))}
	for _, room := range rooms {
		resp.Rooms = append(resp.Rooms, toRoomDTO(room))
	}

	h.log(r.Context(), "List", "result_count", len(resp.Rooms)).DebugContext(r.Context(), "rooms listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// Get returns one room.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.rooms == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID := strings.TrimSpace(chi.URLParam(r, "roomID"))
	room, err := h.rooms.GetRoom(r.Context(), roomID)
	if err != nil {
		h.log(r.Context(), "Get", "room_id", roomID).WarnContext(r.Context(), "room lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomResponse{Room: toRoomDTO(room)})
}

// Availability returns the confirmed bookings of a room on ?date= (default
// today) and the free slots between them.
func (h *RoomHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.rooms == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID := strings.TrimSpace(chi.URLParam(r, "roomID"))
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" && h.today != nil {
		date = h.today()
	}
	logger := h.log(r.Context(), "Availability", "room_id", roomID, "date", date)

	if _, err := h.rooms.GetRoom(r.Context(), roomID); err != nil {
		logger.WarnContext(r.Context(), "room lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	day, err := h.bookings.DayAvailability(r.Context(), roomID, date)
	if err != nil {
		logger.WarnContext(r.Context(), "availability rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := availabilityResponse{
		RoomID:   day.RoomID,
		Date:     day.Date,
		Bookings: make([]bookingDTO, 0, len(day.Bookings)),
		Slots:    day.Slots,
	}
	if resp.Slots == nil {
		resp.Slots = []scheduler.Slot{}
	}
	for _, b := range day.Bookings {
		resp.Bookings = append(resp.Bookings, toBookingDTO(b))
	}

	logger.With("slot_count", len(resp.Slots)).DebugContext(r.Context(), "availability computed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

type roomDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Floor     string   `json:"floor"`
	Amenities []string `json:"amenities"`
}

type roomResponse struct {
	Room roomDTO `json:"room"`
}

type roomListResponse struct {
	Rooms []roomDTO `json:"rooms"`
}

type availabilityResponse struct {
	RoomID   string           `json:"room_id"`
	Date     string           `json:"date"`
	Bookings []bookingDTO     `json:"bookings"`
	Slots    []scheduler.Slot `json:"slots"`
}

func toRoomDTO(room application.Room) roomDTO {
	amenities := room.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return roomDTO{
		ID:        room.ID,
		Name:      room.Name,
		Capacity:  room.Capacity,
		Floor:     room.Floor,
		Amenities: amenities,
	}
}
