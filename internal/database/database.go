package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is a fixed-width UTC format so that lexicographic order of the
// stored strings matches chronological order in SQL comparisons.
const timeLayout = "2006-01-02 15:04:05.000000000"

// DB is the durable store for accounts, resources, reservations and the
// ledger. Per-account and per-resource keyed mutexes protect the
// check-then-act sequences (conflict check + insert, funds check + debit).
type DB struct {
	*sql.DB
	logger *zerolog.Logger

	accountLocks  keyedMutex
	resourceLocks keyedMutex
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// between our own transactions.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{DB: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            telegram_id INTEGER UNIQUE,
            username TEXT,
            full_name TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'user',
            balance TEXT NOT NULL DEFAULT '0',
            created_at TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS resources (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL UNIQUE,
            specs TEXT,
            hourly_rate TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'available'
        )`,
		`CREATE TABLE IF NOT EXISTS reservations (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            account_id INTEGER NOT NULL REFERENCES accounts(id),
            resource_id INTEGER NOT NULL REFERENCES resources(id),
            start_time TEXT NOT NULL,
            end_time TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'active',
            created_at TEXT NOT NULL,
            version INTEGER NOT NULL DEFAULT 1
        )`,
		`CREATE TABLE IF NOT EXISTS ledger_entries (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            account_id INTEGER NOT NULL REFERENCES accounts(id),
            amount TEXT NOT NULL,
            kind TEXT NOT NULL,
            description TEXT,
            created_at TEXT NOT NULL
        )`,

		`CREATE INDEX IF NOT EXISTS idx_accounts_telegram_id ON accounts(telegram_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_resource ON reservations(resource_id, status, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_account ON reservations(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_account ON ledger_entries(account_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}
	return t, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse stored amount %q: %w", s, err)
	}
	return d, nil
}
