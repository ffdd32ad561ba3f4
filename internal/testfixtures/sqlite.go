package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/sqlite"
	"github.com/example/room-booking/internal/persistence/sqlite/migration"
)

// SQLiteHarness is a migrated temporary database for integration tests.
type SQLiteHarness struct {
	Storage *sqlite.Storage
	Path    string
}

// NewSQLiteHarness opens and migrates a database file under tb.TempDir. The
// storage is closed by a registered cleanup.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "booking.db")
	storage, err := sqlite.Open(migration.DefaultSQLiteConfig(path), nil)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = storage.Close() })

	if err := storage.Migrate(context.Background()); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	return &SQLiteHarness{Storage: storage, Path: path}
}

// Seed inserts the default rooms and the given users.
func (h *SQLiteHarness) Seed(tb testing.TB, users ...persistence.User) {
	tb.Helper()

	ctx := context.Background()
	if _, err := h.Storage.SeedRooms(ctx, Rooms()); err != nil {
		tb.Fatalf("failed to seed rooms: %v", err)
	}
	for _, user := range users {
		if _, err := h.Storage.CreateUser(ctx, user); err != nil {
			tb.Fatalf("failed to create user %s: %v", user.ID, err)
		}
	}
}

// Book stores bookings directly, bypassing validation.
func (h *SQLiteHarness) Book(tb testing.TB, bookings ...persistence.Booking) {
	tb.Helper()

	for _, booking := range bookings {
		if _, err := h.Storage.CreateBooking(context.Background(), booking); err != nil {
			tb.Fatalf("failed to store booking %s: %v", booking.ID, err)
		}
	}
}
