package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool *ConnectionPool
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{pool: pool}
}

const insertUserSQL = `
	INSERT INTO users (id, email, name, password, department)
	VALUES (?, ?, ?, ?, COALESCE(NULLIF(?, ''), 'General'))`

// CreateUser inserts a user. A taken email surfaces as persistence.ErrDuplicate.
// The returned record carries no password.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	if user.ID == "" || user.Email == "" {
		return persistence.User{}, persistence.ErrConstraintViolation
	}

	_, err := r.pool.DB().ExecContext(ctx, insertUserSQL,
		user.ID, user.Email, user.Name, user.Password, user.Department)
	if err != nil {
		return persistence.User{}, r.mapUserError(err)
	}

	return r.GetUser(ctx, user.ID)
}

// GetUser retrieves a user by ID without the password.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	var user persistence.User
	err := r.pool.DB().QueryRowContext(ctx,
		`SELECT id, email, name, department FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.Email, &user.Name, &user.Department)
	if err != nil {
		return persistence.User{}, r.mapUserError(err)
	}
	return user, nil
}

// GetUserCredentialsByEmail retrieves a user including the stored password.
func (r *UserRepository) GetUserCredentialsByEmail(ctx context.Context, email string) (persistence.User, error) {
	var user persistence.User
	err := r.pool.DB().QueryRowContext(ctx,
		`SELECT id, email, name, password, department FROM users WHERE email = ?`, email,
	).Scan(&user.ID, &user.Email, &user.Name, &user.Password, &user.Department)
	if err != nil {
		return persistence.User{}, r.mapUserError(err)
	}
	return user, nil
}

// SeedUsers inserts users only when the table is empty and reports how many
// rows were written.
func (r *UserRepository) SeedUsers(ctx context.Context, users []persistence.User) (int, error) {
	inserted := 0
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
			return mapError(err)
		}
		if count > 0 {
			return nil
		}
		for _, user := range users {
			if _, err := tx.ExecContext(ctx, insertUserSQL,
				user.ID, user.Email, user.Name, user.Password, user.Department); err != nil {
				return r.mapUserError(err)
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

func (r *UserRepository) mapUserError(err error) error {
	mapped := mapError(err)
	if errors.Is(mapped, persistence.ErrNotFound) {
		return persistence.ErrNotFound
	}
	if errors.Is(mapped, persistence.ErrDuplicate) {
		return fmt.Errorf("user email already registered: %w", mapped)
	}
	return mapped
}
