// Package store provides the SQLite storage layer for Aisle.
//
// All planner data lives in a single SQLite database file: the wedding
// profile, vendor records, budget lines, tasks, and chat sessions with
// their message history. Reconciliation of sanitized results against
// stored rows happens here, keyed by the same identity keys the sanitizer
// dedups on; cross-invocation dedup is this layer's job, never the
// sanitizer's.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.aisle/aisle.db"

// Wedding is the stored profile record. Pointer fields are NULL when the
// couple has not provided them yet.
type Wedding struct {
	ID                int64
	WeddingDate       string
	WeddingTime       string
	Partner1Name      string
	Partner2Name      string
	Location          string
	ReceptionLocation string
	VenueName         string
	VenueCost         *int64
	GuestCount        *int64
	TotalBudget       *int64
	PrimaryColor      string
	SecondaryColor    string
	Style             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Vendor is a stored vendor row. Identity within a wedding is
// (type, lowercased name).
type Vendor struct {
	ID               int64
	WeddingID        int64
	Type             string
	Name             string
	ContactName      string
	Email            string
	Phone            string
	TotalCost        *int64
	DepositAmount    *int64
	BalanceDue       *int64
	DepositPaid      *bool
	ContractSigned   *bool
	DepositDate      string
	FinalPaymentDate string
	ContractDate     string
	ServiceDate      string
	Status           string
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BudgetItem is a stored budget line, unique per category within a
// wedding. SpentAmount is cumulative server-side: applying a sanitized
// result adds to it rather than replacing it.
type BudgetItem struct {
	ID                     int64
	WeddingID              int64
	Category               string
	BudgetedAmount         *int64
	SpentAmount            *int64
	TransactionAmount      *int64
	TransactionDate        string
	TransactionDescription string
	Notes                  string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Task is a stored task row. Identity within a wedding is
// (lowercased name, due date or the "none" sentinel).
type Task struct {
	ID        int64
	WeddingID int64
	Name      string
	Category  string
	Status    string
	Priority  string
	DueDate   string
	Notes     string
	CreatedAt time.Time
}

// Session is one chat session.
type Session struct {
	ID         string
	WeddingID  int64
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// Message is one chat turn within a session.
type Message struct {
	ID        int64
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}

// Config holds configuration for Open.
type Config struct {
	DBPath string
}

// Store is the SQLite-backed storage handle.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens the database and runs migrations.
// Pass ":memory:" for in-memory databases (testing).
func Open(cfg Config) (*Store, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = expandPath(DefaultDBPath)
	}

	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, dbPath: cfg.DBPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for callers that need raw queries
// (tests, diagnostics).
func (s *Store) DB() *sql.DB {
	return s.db
}

func expandPath(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS weddings (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			wedding_date       TEXT NOT NULL DEFAULT '',
			wedding_time       TEXT NOT NULL DEFAULT '',
			partner1_name      TEXT NOT NULL DEFAULT '',
			partner2_name      TEXT NOT NULL DEFAULT '',
			location           TEXT NOT NULL DEFAULT '',
			reception_location TEXT NOT NULL DEFAULT '',
			venue_name         TEXT NOT NULL DEFAULT '',
			venue_cost         INTEGER,
			guest_count        INTEGER,
			total_budget       INTEGER,
			primary_color      TEXT NOT NULL DEFAULT '',
			secondary_color    TEXT NOT NULL DEFAULT '',
			style              TEXT NOT NULL DEFAULT '',
			created_at         DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at         DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS vendors (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			wedding_id         INTEGER NOT NULL REFERENCES weddings(id) ON DELETE CASCADE,
			type               TEXT NOT NULL,
			name               TEXT NOT NULL,
			name_key           TEXT NOT NULL,
			contact_name       TEXT NOT NULL DEFAULT '',
			email              TEXT NOT NULL DEFAULT '',
			phone              TEXT NOT NULL DEFAULT '',
			total_cost         INTEGER,
			deposit_amount     INTEGER,
			balance_due        INTEGER,
			deposit_paid       INTEGER,
			contract_signed    INTEGER,
			deposit_date       TEXT NOT NULL DEFAULT '',
			final_payment_date TEXT NOT NULL DEFAULT '',
			contract_date      TEXT NOT NULL DEFAULT '',
			service_date       TEXT NOT NULL DEFAULT '',
			status             TEXT NOT NULL DEFAULT '',
			notes              TEXT NOT NULL DEFAULT '',
			created_at         DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at         DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(wedding_id, type, name_key)
		)`,

		`CREATE TABLE IF NOT EXISTS budget_items (
			id                      INTEGER PRIMARY KEY AUTOINCREMENT,
			wedding_id              INTEGER NOT NULL REFERENCES weddings(id) ON DELETE CASCADE,
			category                TEXT NOT NULL,
			budgeted_amount         INTEGER,
			spent_amount            INTEGER,
			transaction_amount      INTEGER,
			transaction_date        TEXT NOT NULL DEFAULT '',
			transaction_description TEXT NOT NULL DEFAULT '',
			notes                   TEXT NOT NULL DEFAULT '',
			created_at              DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at              DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(wedding_id, category)
		)`,

		`CREATE TABLE IF NOT EXISTS tasks (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			wedding_id INTEGER NOT NULL REFERENCES weddings(id) ON DELETE CASCADE,
			name       TEXT NOT NULL,
			name_key   TEXT NOT NULL,
			category   TEXT NOT NULL DEFAULT '',
			status     TEXT NOT NULL DEFAULT '',
			priority   TEXT NOT NULL DEFAULT '',
			due_date   TEXT NOT NULL DEFAULT '',
			due_key    TEXT NOT NULL DEFAULT 'none',
			notes      TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(wedding_id, name_key, due_key)
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id           TEXT PRIMARY KEY,
			wedding_id   INTEGER NOT NULL REFERENCES weddings(id) ON DELETE CASCADE,
			created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_vendors_wedding ON vendors(wedding_id)`,
		`CREATE INDEX IF NOT EXISTS idx_budget_wedding ON budget_items(wedding_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_wedding ON tasks(wedding_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}
	return nil
}
