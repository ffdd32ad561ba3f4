// Package migration applies versioned SQL schema files to a SQLite database.
//
// Migration files follow the naming convention {version}_{description}.sql
// (e.g. "001_initial_schema.sql") and are read from an fs.FS, which lets the
// application embed its schema in the binary. Each file runs in its own
// transaction together with its schema_migrations bookkeeping row, so a
// failed file leaves no partial schema behind and a re-run is a no-op.
//
//	manager := NewMigrationManager(NewFileScanner(schemaFS), NewSQLiteExecutor(db), "migrations", logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
