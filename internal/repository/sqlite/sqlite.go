// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere
// Go works. The driver registers itself with database/sql as "sqlite".
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: the driver's init() registers itself with
	// database/sql under the name "sqlite".
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// It implements both repository.UserRepository and repository.MovieRepository;
// the server hands the same *DB to both services.
type DB struct {
	conn *sql.DB
}

// New creates a SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/videovault.db" → file-based database (persistent)
//   - ":memory:"           → in-memory database (used by the tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection, always. SQLite allows a single writer at a time, so a
	// bigger pool just turns writes into SQLITE_BUSY errors — and with
	// ":memory:" every pooled connection would get its own empty database.
	conn.SetMaxOpenConns(1)

	// sql.Open doesn't actually connect — Ping forces the first connection
	// so a bad path or permissions issue surfaces here, not on first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// important for a web server where requests hit the DB in parallel.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. We need them for the
	// movies.created_by → users.id reference.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to
// run on every startup against an existing database.
func (db *DB) migrate() error {
	// users — the credential store.
	// email is declared COLLATE NOCASE so the UNIQUE index treats
	// "Ana@x.com" and "ana@x.com" as the same address at the schema level,
	// even though the service also lowercases before storing.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'user',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// movies — the catalog store.
	// created_by references the admin who added the entry and is never
	// reassigned. There is no delete-user operation, so no cascade rule.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS movies (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL,
			url         TEXT NOT NULL,
			thumbnail   TEXT NOT NULL,
			views       INTEGER NOT NULL DEFAULT 0,
			created_by  TEXT NOT NULL REFERENCES users(id),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_movies_created_at ON movies(created_at);
		CREATE INDEX IF NOT EXISTS idx_movies_views ON movies(views);
	`)
	if err != nil {
		return fmt.Errorf("creating movies table: %w", err)
	}

	return nil
}
