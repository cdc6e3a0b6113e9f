package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

const schemaThermostats = `
CREATE TABLE IF NOT EXISTS thermostats (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    current_temp INTEGER NOT NULL,
    target_temp INTEGER NOT NULL,
    system_mode TEXT NOT NULL,
    fan_mode TEXT NOT NULL,
    current_humidity INTEGER NOT NULL,
    last_updated TIMESTAMP NOT NULL
);
`

// InitDB opens/creates the SQLite DB file and ensures the schema exists.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// SQLite tolerates one writer; keep the pool at a single connection so
	// concurrent updates serialize in arrival order.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

func ensureSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaThermostats); err != nil {
		return fmt.Errorf("apply thermostats schema: %w", err)
	}
	return nil
}
