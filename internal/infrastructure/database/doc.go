// Package database opens the ground station's SQLite store and applies
// schema migrations.
//
// The store holds the persisted reading history behind /api/v1/readings.
// It runs with WAL journaling and a single writer connection.
//
// Migrations are SQL files named YYYYMMDD_HHMMSS_description.up.sql with
// an optional matching .down.sql, supplied as an fs.FS (normally the
// embedded migrations package). Each one runs in its own transaction and
// is recorded in schema_migrations.
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package database
