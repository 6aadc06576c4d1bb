// Package database provides SQLite connectivity for the ledbetter host.
//
// It opens the database with WAL mode and a busy timeout, and applies
// embedded schema migrations. Named pixel layouts are its only tenant.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    log.Fatal(err)
//	}
//
// Migrations are additive: new columns must be nullable or carry a default.
// All queries use parameterised statements and the file is created 0600.
package database
