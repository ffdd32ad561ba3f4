package application

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/room-booking/internal/calendar"
	"github.com/example/room-booking/internal/persistence"
)

type bookingRepoStub struct {
	created   []Booking
	createErr error

	byID   map[string]Booking
	getErr error

	userList []Booking
	dayList  []Booking
	listErr  error

	cancelled []string
	deleted   []string
	mutateErr error

	purgedBefore string
	purgeCount   int64
}

func (r *bookingRepoStub) CreateBooking(ctx context.Context, booking Booking) (Booking, error) {
	if r.createErr != nil {
		return Booking{}, r.createErr
	}
	r.created = append(r.created, booking)
	return booking, nil
}

func (r *bookingRepoStub) GetBooking(ctx context.Context, id string) (Booking, error) {
	if r.getErr != nil {
		return Booking{}, r.getErr
	}
	b, ok := r.byID[id]
	if !ok {
		return Booking{}, persistence.ErrNotFound
	}
	return b, nil
}

func (r *bookingRepoStub) ListUserBookings(ctx context.Context, userID string) ([]Booking, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.userList, nil
}

func (r *bookingRepoStub) ListDayBookings(ctx context.Context, roomID, date string) ([]Booking, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.dayList, nil
}

func (r *bookingRepoStub) CancelBooking(ctx context.Context, id string) error {
	if r.mutateErr != nil {
		return r.mutateErr
	}
	r.cancelled = append(r.cancelled, id)
	return nil
}

func (r *bookingRepoStub) DeleteBooking(ctx context.Context, id string) error {
	if r.mutateErr != nil {
		return r.mutateErr
	}
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *bookingRepoStub) PurgeCancelledBookings(ctx context.Context, before string) (int64, error) {
	r.purgedBefore = before
	return r.purgeCount, nil
}

var bookingNow = time.Date(2030, 3, 10, 10, 15, 0, 0, time.UTC)

func newTestBookingService(repo BookingRepository) *BookingService {
	return NewBookingService(repo, func() string { return "booking-1" }, func() time.Time { return bookingNow }, 0)
}

func TestBookingService_CreateBooking(t *testing.T) {
	t.Parallel()

	principal := Principal{UserID: "user-1"}
	input := BookingInput{RoomID: "1", Title: "Standup", Date: "2030-03-11", StartTime: "9:00", EndTime: "9:30"}

	t.Run("stores normalized confirmed booking", func(t *testing.T) {
		t.Parallel()

		repo := &bookingRepoStub{}
		booking, err := newTestBookingService(repo).CreateBooking(context.Background(), CreateBookingParams{Principal: principal, Input: input})
		if err != nil {
			t.Fatalf("CreateBooking failed: %v", err)
		}
		if booking.ID != "booking-1" || booking.UserID != "user-1" {
			t.Fatalf("unexpected booking %+v", booking)
		}
		if booking.StartTime != "09:00" || booking.Status != BookingStatusConfirmed {
			t.Fatalf("expected normalized confirmed booking, got %+v", booking)
		}
	})

	t.Run("rejection touches no state", func(t *testing.T) {
		t.Parallel()

		repo := &bookingRepoStub{}
		bad := input
		bad.EndTime = "08:00"
		_, err := newTestBookingService(repo).CreateBooking(context.Background(), CreateBookingParams{Principal: principal, Input: bad})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.Code != CodeInvalidEndTime {
			t.Fatalf("expected %s, got %v", CodeInvalidEndTime, err)
		}
		if len(repo.created) != 0 {
			t.Fatalf("expected no writes, got %d", len(repo.created))
		}
	})

	t.Run("conflict carries the blocking interval", func(t *testing.T) {
		t.Parallel()

		repo := &bookingRepoStub{createErr: &persistence.ConflictError{BookingID: "other", StartTime: "09:00", EndTime: "10:00"}}
		_, err := newTestBookingService(repo).CreateBooking(context.Background(), CreateBookingParams{Principal: principal, Input: input})
		if !errors.Is(err, ErrBookingConflict) {
			t.Fatalf("expected ErrBookingConflict, got %v", err)
		}
		if err.Error() != "Room is already booked from 09:00 to 10:00" {
			t.Fatalf("unexpected message %q", err.Error())
		}
	})

	t.Run("unknown room", func(t *testing.T) {
		t.Parallel()

		repo := &bookingRepoStub{createErr: persistence.ErrForeignKeyViolation}
		_, err := newTestBookingService(repo).CreateBooking(context.Background(), CreateBookingParams{Principal: principal, Input: input})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("requires principal", func(t *testing.T) {
		t.Parallel()

		_, err := newTestBookingService(&bookingRepoStub{}).CreateBooking(context.Background(), CreateBookingParams{Input: input})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestBookingService_ListMyBookings(t *testing.T) {
	t.Parallel()

	t.Run("marks completed bookings", func(t *testing.T) {
		t.Parallel()

		repo := &bookingRepoStub{userList: []Booking{
			{ID: "past", Date: "2030-03-09", StartTime: "09:00", EndTime: "10:00"},
			{ID: "earlier-today", Date: "2030-03-10", StartTime: "09:00", EndTime: "10:00"},
			{ID: "running", Date: "2030-03-10", StartTime: "10:00", EndTime: "11:00"},
			{ID: "future", Date: "2030-03-11", StartTime: "09:00", EndTime: "10:00"},
		}}
		bookings := newTestBookingService(repo).ListMyBookings(context.Background(), Principal{UserID: "user-1"})

		want := map[string]bool{"past": true, "earlier-today": true, "running": false, "future": false}
		for _, b := range bookings {
			if b.Completed != want[b.ID] {
				t.Fatalf("expected completed=%v for %s", want[b.ID], b.ID)
			}
		}
	})

	t.Run("degrades read failure", func(t *testing.T) {
		t.Parallel()

		repo := &bookingRepoStub{listErr: persistence.ErrBusy}
		bookings := newTestBookingService(repo).ListMyBookings(context.Background(), Principal{UserID: "user-1"})
		if bookings == nil || len(bookings) != 0 {
			t.Fatalf("expected empty list, got %#v", bookings)
		}
	})
}

func TestBookingService_DayAvailability(t *testing.T) {
	t.Parallel()

	t.Run("computes slots around bookings", func(t *testing.T) {
		t.Parallel()

		repo := &bookingRepoStub{dayList: []Booking{
			{ID: "b", StartTime: "13:00", EndTime: "14:00"},
			{ID: "a", StartTime: "09:00", EndTime: "10:00"},
		}}
		day, err := newTestBookingService(repo).DayAvailability(context.Background(), "1", "2030-03-11")
		if err != nil {
			t.Fatalf("DayAvailability failed: %v", err)
		}
		if len(day.Bookings) != 2 {
			t.Fatalf("expected 2 bookings, got %d", len(day.Bookings))
		}
		if len(day.Slots) != 2 {
			t.Fatalf("expected 2 slots, got %+v", day.Slots)
		}
		if day.Slots[0].Start != "10:00" || day.Slots[0].End != "13:00" {
			t.Fatalf("unexpected first slot %+v", day.Slots[0])
		}
		if day.Slots[1].Start != "14:00" || day.Slots[1].End != "20:00" {
			t.Fatalf("unexpected second slot %+v", day.Slots[1])
		}
	})

	t.Run("read failure yields no slots", func(t *testing.T) {
		t.Parallel()

		repo := &bookingRepoStub{listErr: errors.New("disk")}
		day, err := newTestBookingService(repo).DayAvailability(context.Background(), "1", "2030-03-11")
		if err != nil {
			t.Fatalf("expected degraded result, got %v", err)
		}
		if len(day.Bookings) != 0 || len(day.Slots) != 0 {
			t.Fatalf("expected empty result, got %+v", day)
		}
	})

	t.Run("rejects bad date", func(t *testing.T) {
		t.Parallel()

		_, err := newTestBookingService(&bookingRepoStub{}).DayAvailability(context.Background(), "1", "tomorrow")
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.Code != CodeInvalidDate {
			t.Fatalf("expected %s, got %v", CodeInvalidDate, err)
		}
	})
}

func TestBookingService_CancelAndDelete(t *testing.T) {
	t.Parallel()

	owner := Principal{UserID: "owner"}
	stranger := Principal{UserID: "stranger"}
	newRepo := func() *bookingRepoStub {
		return &bookingRepoStub{byID: map[string]Booking{"b1": {ID: "b1", UserID: "owner"}}}
	}

	t.Run("owner cancels", func(t *testing.T) {
		t.Parallel()

		repo := newRepo()
		if err := newTestBookingService(repo).CancelBooking(context.Background(), owner, "b1"); err != nil {
			t.Fatalf("CancelBooking failed: %v", err)
		}
		if len(repo.cancelled) != 1 || repo.cancelled[0] != "b1" {
			t.Fatalf("expected b1 cancelled, got %v", repo.cancelled)
		}
	})

	t.Run("stranger is refused", func(t *testing.T) {
		t.Parallel()

		repo := newRepo()
		svc := newTestBookingService(repo)
		if err := svc.CancelBooking(context.Background(), stranger, "b1"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if err := svc.DeleteBooking(context.Background(), stranger, "b1"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if len(repo.cancelled)+len(repo.deleted) != 0 {
			t.Fatal("expected no mutation")
		}
	})

	t.Run("missing booking", func(t *testing.T) {
		t.Parallel()

		svc := newTestBookingService(newRepo())
		if err := svc.DeleteBooking(context.Background(), owner, "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("owner deletes", func(t *testing.T) {
		t.Parallel()

		repo := newRepo()
		if err := newTestBookingService(repo).DeleteBooking(context.Background(), owner, "b1"); err != nil {
			t.Fatalf("DeleteBooking failed: %v", err)
		}
		if len(repo.deleted) != 1 {
			t.Fatalf("expected one delete, got %v", repo.deleted)
		}
	})

	t.Run("write failure propagates", func(t *testing.T) {
		t.Parallel()

		repo := newRepo()
		repo.mutateErr = persistence.ErrBusy
		if err := newTestBookingService(repo).CancelBooking(context.Background(), owner, "b1"); !errors.Is(err, persistence.ErrBusy) {
			t.Fatalf("expected ErrBusy, got %v", err)
		}
	})
}

func TestBookingService_ExportCalendar(t *testing.T) {
	t.Parallel()

	repo := &bookingRepoStub{userList: []Booking{
		{ID: "b1", Title: "Standup", Date: "2030-03-11", StartTime: "09:00", EndTime: "09:30", RoomName: "Conference Room A", RoomFloor: "2nd Floor"},
	}}

	var buf bytes.Buffer
	if err := newTestBookingService(repo).ExportCalendar(context.Background(), Principal{UserID: "owner"}, &buf); err != nil {
		t.Fatalf("ExportCalendar failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"BEGIN:VEVENT", "UID:b1", "SUMMARY:Standup", "20300311T090000Z"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in feed:\n%s", want, out)
		}
	}

	empty := &bookingRepoStub{}
	if err := newTestBookingService(empty).ExportCalendar(context.Background(), Principal{UserID: "owner"}, &bytes.Buffer{}); !errors.Is(err, calendar.ErrNoEvents) {
		t.Fatalf("expected ErrNoEvents, got %v", err)
	}
}

func TestBookingService_PurgeCancelled(t *testing.T) {
	t.Parallel()

	repo := &bookingRepoStub{purgeCount: 3}
	svc := newTestBookingService(repo)

	n, err := svc.PurgeCancelled(context.Background(), 30*24*time.Hour)
	if err != nil {
		t.Fatalf("PurgeCancelled failed: %v", err)
	}
	if n != 3 || repo.purgedBefore != "2030-02-08" {
		t.Fatalf("expected 3 purged before 2030-02-08, got %d before %q", n, repo.purgedBefore)
	}

	repo.purgedBefore = ""
	if n, err := svc.PurgeCancelled(context.Background(), 0); err != nil || n != 0 || repo.purgedBefore != "" {
		t.Fatalf("expected zero retention to skip purge, got %d, %v, %q", n, err, repo.purgedBefore)
	}
}
