package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// StateRepository implements persistence.StateRepository using the app_state
// table.
type StateRepository struct {
	pool *ConnectionPool
	now  func() time.Time
}

// NewStateRepository creates a new SQLite key/value repository.
func NewStateRepository(pool *ConnectionPool) *StateRepository {
	return &StateRepository{pool: pool, now: time.Now}
}

// GetState returns the stored values for the given keys. Missing keys are
// absent from the result.
func (r *StateRepository) GetState(ctx context.Context, keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return values, nil
	}

	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT key, value FROM app_state WHERE key IN (`+placeholders(len(keys))+`)`,
		stringArgs(keys)...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, mapError(err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return values, nil
}

// PutState writes all entries or none.
func (r *StateRepository) PutState(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	updatedAt := r.now().UTC().Format(time.RFC3339)
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for key, value := range entries {
			if key == "" {
				return persistence.ErrConstraintViolation
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
				key, value, updatedAt)
			if err != nil {
				return fmt.Errorf("put state %q: %w", key, mapError(err))
			}
		}
		return nil
	})
}

// DeleteState removes the given keys. Missing keys are ignored.
func (r *StateRepository) DeleteState(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.pool.DB().ExecContext(ctx,
		`DELETE FROM app_state WHERE key IN (`+placeholders(len(keys))+`)`,
		stringArgs(keys)...)
	if err != nil {
		return fmt.Errorf("delete state: %w", mapError(err))
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
