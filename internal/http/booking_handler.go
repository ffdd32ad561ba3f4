package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/calendar"
)

type bookingService interface {
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	ListMyBookings(ctx context.Context, principal application.Principal) []application.Booking
	CancelBooking(ctx context.Context, principal application.Principal, bookingID string) error
	DeleteBooking(ctx context.Context, principal application.Principal, bookingID string) error
	ExportCalendar(ctx context.Context, principal application.Principal, w io.Writer) error
}

// BookingHandler serves the caller's bookings.
type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

// NewBookingHandler builds a BookingHandler.
func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

// List returns the caller's confirmed bookings ordered by date and start time.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	bookings := h.service.ListMyBookings(r.Context(), principal)

	resp := bookingListResponse{Bookings: make([]bookingDTO, 0, len(bookings))}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, toBookingDTO(b))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// Create validates and stores a booking for the caller.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "room_id", req.RoomID)

	booking, err := h.service.CreateBooking(r.Context(), application.CreateBookingParams{
		Principal: principal,
		Input: application.BookingInput{
			RoomID:      req.RoomID,
			Title:       req.Title,
			Description: req.Description,
			Date:        req.Date,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
		},
	})
	if err != nil {
		logger.WarnContext(r.Context(), "booking rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{Booking: toBookingDTO(booking)})
}

// Cancel marks one of the caller's bookings cancelled.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "Cancel", func(ctx context.Context, principal application.Principal, id string) error {
		return h.service.CancelBooking(ctx, principal, id)
	})
}

// Delete removes one of the caller's bookings.
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "Delete", func(ctx context.Context, principal application.Principal, id string) error {
		return h.service.DeleteBooking(ctx, principal, id)
	})
}

func (h *BookingHandler) mutate(w http.ResponseWriter, r *http.Request, operation string, fn func(context.Context, application.Principal, string) error) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	bookingID := strings.TrimSpace(chi.URLParam(r, "bookingID"))
	logger := h.log(r.Context(), operation, "principal_id", principal.UserID, "booking_id", bookingID)

	if err := fn(r.Context(), principal, bookingID); err != nil {
		logger.WarnContext(r.Context(), "booking update rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Calendar returns the caller's confirmed bookings as text/calendar, or 204
// when there are none.
func (h *BookingHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var buf bytes.Buffer
	if err := h.service.ExportCalendar(r.Context(), principal, &buf); err != nil {
		if errors.Is(err, calendar.ErrNoEvents) {
			h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
			return
		}
		h.log(r.Context(), "Calendar", "principal_id", principal.UserID).ErrorContext(r.Context(), "calendar export failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.log(r.Context(), "Calendar").ErrorContext(r.Context(), "failed to write calendar", "error", err)
	}
}

type bookingRequest struct {
	RoomID      string `json:"room_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

type bookingDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	RoomID      string `json:"room_id"`
	RoomName    string `json:"room_name,omitempty"`
	RoomFloor   string `json:"room_floor,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Status      string `json:"status"`
	Completed   bool   `json:"completed"`
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type bookingListResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

func toBookingDTO(b application.Booking) bookingDTO {
	return bookingDTO{
		ID:          b.ID,
		UserID:      b.UserID,
		RoomID:      b.RoomID,
		RoomName:    b.RoomName,
		RoomFloor:   b.RoomFloor,
		Title:       b.Title,
		Description: b.Description,
		Date:        b.Date,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      b.Status,
		Completed:   b.Completed,
	}
}
