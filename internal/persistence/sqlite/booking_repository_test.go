package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/example/room-booking/internal/persistence"
)

func newBooking(id, roomID, date, start, end string) persistence.Booking {
	return persistence.Booking{
		ID:        id,
		UserID:    "u1",
		RoomID:    roomID,
		Title:     "Standup",
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
}

func TestBookingRepository_CreateBooking(t *testing.T) {
	storage := setupStorage(t)
	seedFixtures(t, storage)
	ctx := context.Background()

	created, err := storage.CreateBooking(ctx, newBooking("b1", "1", "2030-01-15", "09:00", "10:00"))
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if created.Status != persistence.BookingStatusConfirmed {
		t.Fatalf("expected confirmed status, got %q", created.Status)
	}
	if created.RoomName != "Aurora" || created.RoomFloor != "3F" {
		t.Fatalf("expected joined room fields, got %q %q", created.RoomName, created.RoomFloor)
	}
	if created.Description != "" {
		t.Fatalf("expected empty description, got %q", created.Description)
	}

	t.Run("overlap reports the blocking interval", func(t *testing.T) {
		_, err := storage.CreateBooking(ctx, newBooking("b2", "1", "2030-01-15", "09:30", "10:30"))
		if !errors.Is(err, persistence.ErrBookingConflict) {
			t.Fatalf("expected ErrBookingConflict, got %v", err)
		}
		var conflict *persistence.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected *ConflictError, got %T", err)
		}
		if conflict.BookingID != "b1" {
			t.Fatalf("expected conflict with b1, got %q", conflict.BookingID)
		}
		if err.Error() != "Room is already booked from 09:00 to 10:00" {
			t.Fatalf("unexpected message %q", err.Error())
		}
	})

	t.Run("adjacent intervals are accepted", func(t *testing.T) {
		if _, err := storage.CreateBooking(ctx, newBooking("b3", "1", "2030-01-15", "10:00", "11:00")); err != nil {
			t.Fatalf("expected adjacent booking to succeed, got %v", err)
		}
		if _, err := storage.CreateBooking(ctx, newBooking("b4", "1", "2030-01-15", "08:30", "09:00")); err != nil {
			t.Fatalf("expected adjacent booking to succeed, got %v", err)
		}
	})

	t.Run("other room and other date are independent", func(t *testing.T) {
		if _, err := storage.CreateBooking(ctx, newBooking("b5", "2", "2030-01-15", "09:00", "10:00")); err != nil {
			t.Fatalf("expected other room to succeed, got %v", err)
		}
		if _, err := storage.CreateBooking(ctx, newBooking("b6", "1", "2030-01-16", "09:00", "10:00")); err != nil {
			t.Fatalf("expected other date to succeed, got %v", err)
		}
	})

	t.Run("unknown room", func(t *testing.T) {
		_, err := storage.CreateBooking(ctx, newBooking("b7", "99", "2030-01-15", "12:00", "13:00"))
		if !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := storage.CreateBooking(ctx, newBooking("b8", "1", "2030-01-15", "15:00", "14:00"))
		if !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})
}

func TestBookingRepository_CancelledSlotIsRebookable(t *testing.T) {
	storage := setupStorage(t)
	seedFixtures(t, storage)
	ctx := context.Background()

	if _, err := storage.CreateBooking(ctx, newBooking("b1", "1", "2030-01-15", "13:00", "14:00")); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if err := storage.CancelBooking(ctx, "b1"); err != nil {
		t.Fatalf("CancelBooking failed: %v", err)
	}
	if err := storage.CancelBooking(ctx, "b1"); err != nil {
		t.Fatalf("expected repeated cancel to succeed, got %v", err)
	}

	if _, err := storage.CreateBooking(ctx, newBooking("b2", "1", "2030-01-15", "13:00", "14:00")); err != nil {
		t.Fatalf("expected cancelled slot to be bookable, got %v", err)
	}

	day, err := storage.ListDayBookings(ctx, "1", "2030-01-15")
	if err != nil {
		t.Fatalf("ListDayBookings failed: %v", err)
	}
	if len(day) != 1 || day[0].ID != "b2" {
		t.Fatalf("expected only b2 in day view, got %+v", day)
	}

	cancelled, err := storage.GetBooking(ctx, "b1")
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if cancelled.Status != persistence.BookingStatusCancelled {
		t.Fatalf("expected cancelled status, got %q", cancelled.Status)
	}
}

func TestBookingRepository_MissingID(t *testing.T) {
	storage := setupStorage(t)
	ctx := context.Background()

	if err := storage.CancelBooking(ctx, "nope"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from CancelBooking, got %v", err)
	}
	if err := storage.DeleteBooking(ctx, "nope"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from DeleteBooking, got %v", err)
	}
	if _, err := storage.GetBooking(ctx, "nope"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from GetBooking, got %v", err)
	}
}

func TestBookingRepository_ListUserBookings(t *testing.T) {
	storage := setupStorage(t)
	seedFixtures(t, storage)
	ctx := context.Background()

	inputs := []persistence.Booking{
		newBooking("b1", "2", "2030-01-16", "09:00", "10:00"),
		newBooking("b2", "1", "2030-01-15", "14:00", "15:00"),
		newBooking("b3", "1", "2030-01-15", "09:00", "10:00"),
	}
	other := newBooking("b4", "1", "2030-01-15", "11:00", "12:00")
	other.UserID = "u2"
	inputs = append(inputs, other)

	for _, b := range inputs {
		if _, err := storage.CreateBooking(ctx, b); err != nil {
			t.Fatalf("CreateBooking %s failed: %v", b.ID, err)
		}
	}
	if err := storage.CancelBooking(ctx, "b2"); err != nil {
		t.Fatalf("CancelBooking failed: %v", err)
	}

	bookings, err := storage.ListUserBookings(ctx, "u1")
	if err != nil {
		t.Fatalf("ListUserBookings failed: %v", err)
	}
	var ids []string
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}
	if fmt.Sprint(ids) != "[b3 b1]" {
		t.Fatalf("expected [b3 b1], got %v", ids)
	}
	if bookings[1].RoomName != "Borealis" {
		t.Fatalf("expected room name Borealis, got %q", bookings[1].RoomName)
	}
}

func TestBookingRepository_DeleteAndPurge(t *testing.T) {
	storage := setupStorage(t)
	seedFixtures(t, storage)
	ctx := context.Background()

	for _, b := range []persistence.Booking{
		newBooking("b1", "1", "2030-01-10", "09:00", "10:00"),
		newBooking("b2", "1", "2030-01-20", "09:00", "10:00"),
		newBooking("b3", "1", "2030-01-05", "09:00", "10:00"),
	} {
		if _, err := storage.CreateBooking(ctx, b); err != nil {
			t.Fatalf("CreateBooking %s failed: %v", b.ID, err)
		}
	}
	for _, id := range []string{"b1", "b2"} {
		if err := storage.CancelBooking(ctx, id); err != nil {
			t.Fatalf("CancelBooking %s failed: %v", id, err)
		}
	}

	n, err := storage.PurgeCancelledBookings(ctx, "2030-01-15")
	if err != nil {
		t.Fatalf("PurgeCancelledBookings failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 purged booking, got %d", n)
	}
	if _, err := storage.GetBooking(ctx, "b1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected b1 purged, got %v", err)
	}

	if err := storage.DeleteBooking(ctx, "b3"); err != nil {
		t.Fatalf("DeleteBooking failed: %v", err)
	}
	if err := storage.DeleteBooking(ctx, "b3"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	n, err = storage.PurgeCancelledBookings(ctx, "")
	if err != nil {
		t.Fatalf("PurgeCancelledBookings failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected remaining cancelled booking purged, got %d", n)
	}
}

func TestBookingRepository_ConcurrentCreateSingleWinner(t *testing.T) {
	storage := setupStorage(t)
	seedFixtures(t, storage)
	ctx := context.Background()

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := storage.CreateBooking(ctx, newBooking(fmt.Sprintf("c%d", i), "1", "2030-02-01", "15:00", "16:00"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, persistence.ErrBookingConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}(i)
	}
	wg.Wait()

	if len(others) > 0 {
		t.Fatalf("unexpected errors: %v", others)
	}
	if successes != 1 || conflicts != attempts-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d and %d", attempts-1, successes, conflicts)
	}
}
