package maintenance

import (
	"context"
	"time"
)

// SessionPruner clears an expired stored session.
type SessionPruner interface {
	PruneExpiredSession(ctx context.Context) (bool, error)
}

// CancelledPurger removes cancelled bookings older than a retention window.
type CancelledPurger interface {
	PurgeCancelled(ctx context.Context, retention time.Duration) (int64, error)
}

// SessionSweep returns a job that drops the stored session once its token expires.
func SessionSweep(pruner SessionPruner) Job {
	return Job{
		Name:    "session-sweep",
		Timeout: 30 * time.Second,
		Run: func(ctx context.Context) error {
			_, err := pruner.PruneExpiredSession(ctx)
			return err
		},
	}
}

// CancelledPurge returns a job that deletes cancelled bookings older than retention.
func CancelledPurge(purger CancelledPurger, retention time.Duration) Job {
	return Job{
		Name:    "cancelled-purge",
		Timeout: time.Minute,
		Run: func(ctx context.Context) error {
			_, err := purger.PurgeCancelled(ctx, retention)
			return err
		},
	}
}
