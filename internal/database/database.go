package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// pragmas applied to every pooled connection. Writers take the lock up front
// so two import runs queue on busy_timeout instead of failing mid-batch.
const pragmas = "_pragma=journal_mode(WAL)" +
	"&_pragma=foreign_keys(1)" +
	"&_pragma=busy_timeout(5000)" +
	"&_pragma=synchronous(NORMAL)" +
	"&_txlock=immediate"

// Open opens (creating if needed) the SQLite ledger at path.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?"+pragmas)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

type migration struct {
	version int
	name    string
}

// Migrate applies every embedded migration newer than the database's
// user_version, each in its own transaction, and returns how many ran.
func Migrate(ctx context.Context, db *sql.DB) (int, error) {
	current, err := Version(ctx, db)
	if err != nil {
		return 0, err
	}

	pending, err := list()
	if err != nil {
		return 0, err
	}

	applied := 0

	for _, m := range pending {
		if m.version <= current {
			continue
		}

		if err := apply(ctx, db, m); err != nil {
			return applied, err
		}

		applied++
	}

	return applied, nil
}

// Version returns the schema version recorded in the database.
func Version(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	return v, nil
}

// Latest is the version the embedded migrations bring a database to.
func Latest() int {
	ms, err := list()
	if err != nil || len(ms) == 0 {
		return 0
	}

	return ms[len(ms)-1].version
}

func list() ([]migration, error) {
	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}

	var out []migration

	for _, e := range entries {
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			return nil, fmt.Errorf("migration %q: name must start with a version", e.Name())
		}

		v, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %q: %w", e.Name(), err)
		}

		out = append(out, migration{version: v, name: e.Name()})
	}

	slices.SortFunc(out, func(a, b migration) int { return a.version - b.version })

	return out, nil
}

func apply(ctx context.Context, db *sql.DB, m migration) error {
	body, err := migrations.ReadFile("migrations/" + m.name)
	if err != nil {
		return fmt.Errorf("reading migration %s: %w", m.name, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning migration %s: %w", m.name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return fmt.Errorf("applying migration %s: %w", m.name, err)
	}

	// user_version is part of the database header and rolls back with tx.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		return fmt.Errorf("recording migration %s: %w", m.name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration %s: %w", m.name, err)
	}

	return nil
}
