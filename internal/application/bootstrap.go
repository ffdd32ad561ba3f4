package application

import (
	"context"
	"log/slog"
)

// Seeder inserts fixed records into empty tables.
type Seeder interface {
	SeedRooms(ctx context.Context, rooms []Room) (int, error)
	SeedUsers(ctx context.Context, users []UserCredentials) (int, error)
}

// DefaultRooms is the room catalog installed on first start.
func DefaultRooms() []Room {
	return []Room{
		{ID: "1", Name: "Conference Room A", Capacity: 10, Floor: "2nd Floor", Amenities: []string{"Projector", "Whiteboard"}},
		{ID: "2", Name: "Meeting Room B", Capacity: 6, Floor: "3rd Floor", Amenities: []string{"TV", "Phone"}},
		{ID: "3", Name: "Executive Boardroom", Capacity: 15, Floor: "5th Floor", Amenities: []string{"Projector", "Video Conference", "Whiteboard"}},
	}
}

// DefaultUsers is the demo account set installed on first start. Passwords
// are given in clear and stored through the configured scheme.
func DefaultUsers() []UserCredentials {
	return []UserCredentials{
		{User: User{ID: "1", Email: "demo@company.com", Name: "Demo User", Department: "Engineering"}, Password: "123456"},
		{User: User{ID: "2", Email: "admin@company.com", Name: "Admin User", Department: "Management"}, Password: "admin"},
	}
}

// Bootstrap seeds the default rooms and users into empty tables. Failures
// are logged and do not stop startup.
func Bootstrap(ctx context.Context, seeder Seeder, passwords PasswordScheme, logger *slog.Logger) {
	logger = serviceLogger(ctx, logger, "Bootstrap", "Seed")
	if seeder == nil {
		return
	}
	if passwords == nil {
		passwords = PlainPasswords{}
	}

	if n, err := seeder.SeedRooms(ctx, DefaultRooms()); err != nil {
		logger.ErrorContext(ctx, "failed to seed rooms", "error", err, "error_kind", ErrorKind(err))
	} else {
		logger.InfoContext(ctx, "rooms seeded", "inserted", n)
	}

	users := DefaultUsers()
	for i := range users {
		stored, err := passwords.Hash(users[i].Password)
		if err != nil {
			logger.ErrorContext(ctx, "failed to hash seed password", "user_id", users[i].User.ID, "error", err)
			return
		}
		users[i].Password = stored
	}
	if n, err := seeder.SeedUsers(ctx, users); err != nil {
		logger.ErrorContext(ctx, "failed to seed users", "error", err, "error_kind", ErrorKind(err))
	} else {
		logger.InfoContext(ctx, "users seeded", "inserted", n)
	}
}
