package migration

import (
	"context"
	"fmt"
	"log/slog"
)

type migrationManager struct {
	scanner  FileScanner
	executor Executor
	dir      string
	logger   *slog.Logger
}

// NewMigrationManager creates a MigrationManager reading migrations from dir.
func NewMigrationManager(scanner FileScanner, executor Executor, dir string, logger *slog.Logger) MigrationManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &migrationManager{
		scanner:  scanner,
		executor: executor,
		dir:      dir,
		logger:   logger.With("component", "migration"),
	}
}

// RunMigrations applies every pending migration in version order and stops at
// the first failure.
func (m *migrationManager) RunMigrations(ctx context.Context) error {
	pending, err := m.GetPendingMigrations(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to determine pending migrations", "error", err)
		return err
	}
	if len(pending) == 0 {
		m.logger.DebugContext(ctx, "schema up to date")
		return nil
	}

	for i, mig := range pending {
		elapsed, err := m.executor.ApplyMigration(ctx, mig)
		if err != nil {
			m.logger.ErrorContext(ctx, "migration failed",
				"version", mig.Version,
				"file", mig.FilePath,
				"error", err,
			)
			return NewMigrationError(mig.Version, mig.FilePath, "execute migration", fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}
		m.logger.InfoContext(ctx, "migration applied",
			"version", mig.Version,
			"description", mig.Description,
			"position", i+1,
			"total", len(pending),
			"duration", elapsed,
		)
	}
	return nil
}

// GetPendingMigrations returns migrations not yet recorded as applied. Applied
// migrations whose file checksum changed are reported as errors.
func (m *migrationManager) GetPendingMigrations(ctx context.Context) ([]Migration, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize version table: %w", err)
	}

	available, err := m.scanner.ScanMigrations(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan migrations: %w", err)
	}

	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied versions: %w", err)
	}
	checksums := make(map[string]string, len(applied))
	for _, am := range applied {
		checksums[am.Version] = am.Checksum
	}

	var pending []Migration
	for _, mig := range available {
		sum, ok := checksums[mig.Version]
		if !ok {
			pending = append(pending, mig)
			continue
		}
		if sum != "" && sum != mig.Checksum {
			return nil, NewMigrationError(mig.Version, mig.FilePath, "verify checksum", ErrChecksumMismatch)
		}
	}
	return pending, nil
}

// GetMigrationStatus reports the current version and pending work.
func (m *migrationManager) GetMigrationStatus(ctx context.Context) (*MigrationStatus, error) {
	pending, err := m.GetPendingMigrations(ctx)
	if err != nil {
		return nil, err
	}
	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	status := &MigrationStatus{
		PendingCount:      len(pending),
		AppliedMigrations: applied,
		PendingMigrations: pending,
	}
	if len(applied) > 0 {
		status.CurrentVersion = applied[len(applied)-1].Version
	}
	return status, nil
}
