package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/example/room-booking/internal/calendar"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/scheduler"
)

// BookingRepository captures the persistence operations needed by the booking service.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]Booking, error)
	ListDayBookings(ctx context.Context, roomID, date string) ([]Booking, error)
	CancelBooking(ctx context.Context, id string) error
	DeleteBooking(ctx context.Context, id string) error
	PurgeCancelledBookings(ctx context.Context, before string) (int64, error)
}

// BookingService validates, stores, and lists room bookings.
type BookingService struct {
	bookings       BookingRepository
	idGenerator    func() string
	now            func() time.Time
	maxAdvanceDays int
	logger         *slog.Logger
}

// NewBookingService constructs a booking service with the provided dependencies.
func NewBookingService(bookings BookingRepository, idGenerator func() string, now func() time.Time, maxAdvanceDays int) *BookingService {
	return NewBookingServiceWithLogger(bookings, idGenerator, now, maxAdvanceDays, nil)
}

// NewBookingServiceWithLogger constructs a booking service with a specified logger.
func NewBookingServiceWithLogger(bookings BookingRepository, idGenerator func() string, now func() time.Time, maxAdvanceDays int, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if maxAdvanceDays <= 0 {
		maxAdvanceDays = DefaultMaxAdvanceDays
	}
	return &BookingService{
		bookings:       bookings,
		idGenerator:    idGenerator,
		now:            now,
		maxAdvanceDays: maxAdvanceDays,
		logger:         defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CreateBooking validates the input and stores a confirmed booking for the principal.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateBooking",
		"principal_id", params.Principal.UserID,
		"room_id", params.Input.RoomID,
		"date", params.Input.Date,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking created")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	var input BookingInput
	input, err = ValidateBooking(params.Input, s.now(), s.maxAdvanceDays)
	if err != nil {
		return
	}

	candidate := Booking{
		ID:          s.idGenerator(),
		UserID:      params.Principal.UserID,
		RoomID:      input.RoomID,
		Title:       input.Title,
		Description: input.Description,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Status:      BookingStatusConfirmed,
	}

	booking, err = s.bookings.CreateBooking(ctx, candidate)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}
	return
}

// ListMyBookings returns the principal's confirmed bookings ordered by date
// and start time. Read failures are logged and yield an empty list.
func (s *BookingService) ListMyBookings(ctx context.Context, principal Principal) []Booking {
	if s == nil || s.bookings == nil {
		return []Booking{}
	}

	logger := s.loggerWith(ctx, "ListMyBookings", "principal_id", principal.UserID)

	bookings, err := s.bookings.ListUserBookings(ctx, principal.UserID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list bookings", "error", err, "error_kind", ErrorKind(err))
		return []Booking{}
	}

	now := s.now()
	out := make([]Booking, len(bookings))
	for i, b := range bookings {
		if end, ok := bookingInstant(b.Date, b.EndTime, now.Location()); ok {
			b.Completed = end.Before(now)
		}
		out[i] = b
	}

	logger.With("result_count", len(out)).DebugContext(ctx, "bookings listed")
	return out
}

// DayAvailability returns the confirmed bookings of a room on date together
// with the free slots between them. A read failure is logged and yields no
// bookings and no slots.
func (s *BookingService) DayAvailability(ctx context.Context, roomID, date string) (DayAvailability, error) {
	if s == nil {
		return DayAvailability{}, fmt.Errorf("BookingService is nil")
	}

	result := DayAvailability{RoomID: roomID, Date: date, Bookings: []Booking{}, Slots: []scheduler.Slot{}}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return DayAvailability{}, ruleViolation(CodeInvalidDate, "date", "Please enter a valid date (YYYY-MM-DD)")
	}
	if s.bookings == nil {
		return result, nil
	}

	logger := s.loggerWith(ctx, "DayAvailability", "room_id", roomID, "date", date)

	bookings, err := s.bookings.ListDayBookings(ctx, roomID, date)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load day bookings", "error", err, "error_kind", ErrorKind(err))
		return result, nil
	}

	intervals := make([]scheduler.Interval, 0, len(bookings))
	for _, b := range bookings {
		interval, err := scheduler.IntervalFromClock(b.StartTime, b.EndTime)
		if err != nil {
			logger.WarnContext(ctx, "skipping booking with unreadable times", "booking_id", b.ID, "error", err)
			continue
		}
		intervals = append(intervals, interval)
	}

	result.Bookings = append(result.Bookings, bookings...)
	result.Slots = scheduler.AvailableSlots(intervals)
	return result, nil
}

// CancelBooking marks one of the principal's bookings cancelled.
func (s *BookingService) CancelBooking(ctx context.Context, principal Principal, bookingID string) error {
	return s.mutateOwned(ctx, "CancelBooking", principal, bookingID, s.bookingsCancel)
}

// DeleteBooking removes one of the principal's bookings permanently.
func (s *BookingService) DeleteBooking(ctx context.Context, principal Principal, bookingID string) error {
	return s.mutateOwned(ctx, "DeleteBooking", principal, bookingID, s.bookingsDelete)
}

func (s *BookingService) bookingsCancel(ctx context.Context, id string) error {
	return s.bookings.CancelBooking(ctx, id)
}

func (s *BookingService) bookingsDelete(ctx context.Context, id string) error {
	return s.bookings.DeleteBooking(ctx, id)
}

func (s *BookingService) mutateOwned(ctx context.Context, operation string, principal Principal, bookingID string, mutate func(context.Context, string) error) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}

	logger := s.loggerWith(ctx, operation,
		"principal_id", principal.UserID,
		"booking_id", bookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking updated")
	}()

	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	var existing Booking
	existing, err = s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}
	if existing.UserID != principal.UserID {
		err = ErrUnauthorized
		return
	}

	if err = mutate(ctx, bookingID); err != nil {
		err = mapBookingRepoError(err)
		return
	}
	return nil
}

// ExportCalendar writes the principal's confirmed bookings as an iCalendar
// feed. It returns calendar.ErrNoEvents when there is nothing to export.
func (s *BookingService) ExportCalendar(ctx context.Context, principal Principal, w io.Writer) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}

	logger := s.loggerWith(ctx, "ExportCalendar", "principal_id", principal.UserID)
	events := 0
	defer func() {
		if err != nil && !errors.Is(err, calendar.ErrNoEvents) {
			logger.ErrorContext(ctx, "failed to export calendar", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_count", events).InfoContext(ctx, "calendar exported")
	}()

	var bookings []Booking
	bookings, err = s.bookings.ListUserBookings(ctx, principal.UserID)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	now := s.now()
	entries := make([]calendar.Event, 0, len(bookings))
	for _, b := range bookings {
		start, okStart := bookingInstant(b.Date, b.StartTime, now.Location())
		end, okEnd := bookingInstant(b.Date, b.EndTime, now.Location())
		if !okStart || !okEnd {
			logger.WarnContext(ctx, "skipping booking with unreadable times", "booking_id", b.ID)
			continue
		}
		entries = append(entries, calendar.Event{
			UID:         b.ID,
			Summary:     b.Title,
			Description: b.Description,
			Location:    roomLocation(b),
			Start:       start,
			End:         end,
		})
	}
	events = len(entries)

	err = calendar.Encode(w, entries, calendar.Options{Stamp: now})
	return
}

// PurgeCancelled removes cancelled bookings dated more than retention ago.
// A non-positive retention keeps everything.
func (s *BookingService) PurgeCancelled(ctx context.Context, retention time.Duration) (purged int64, err error) {
	if s == nil {
		return 0, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil || retention <= 0 {
		return 0, nil
	}

	before := s.now().Add(-retention).Format(dateLayout)
	logger := s.loggerWith(ctx, "PurgeCancelled", "before", before)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to purge cancelled bookings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("purged", purged).InfoContext(ctx, "cancelled bookings purged")
	}()

	purged, err = s.bookings.PurgeCancelledBookings(ctx, before)
	return
}

func bookingInstant(date, clock string, loc *time.Location) (time.Time, bool) {
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, false
	}
	minutes, err := scheduler.ParseClock(clock)
	if err != nil {
		return time.Time{}, false
	}
	return day.Add(time.Duration(minutes) * time.Minute), true
}

func roomLocation(b Booking) string {
	switch {
	case b.RoomName != "" && b.RoomFloor != "":
		return b.RoomName + ", " + b.RoomFloor
	case b.RoomName != "":
		return b.RoomName
	default:
		return b.RoomFloor
	}
}

func mapBookingRepoError(err error) error {
	if err == nil {
		return nil
	}

	var conflict *persistence.ConflictError
	if errors.As(err, &conflict) {
		return &ConflictError{StartTime: conflict.StartTime, EndTime: conflict.EndTime}
	}
	switch {
	case errors.Is(err, ErrBookingConflict):
		return err
	case errors.Is(err, persistence.ErrBookingConflict):
		return &ConflictError{}
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return fmt.Errorf("%w: room does not exist", ErrNotFound)
	}
	return err
}
