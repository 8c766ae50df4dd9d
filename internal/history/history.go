package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeSyntaxError  Outcome = "syntax-error"
	OutcomeStaticError  Outcome = "static-error"
	OutcomeRuntimeError Outcome = "runtime-error"
)

const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Entry is one line entered at the REPL.
type Entry struct {
	ID        int64
	EnteredAt time.Time
	Source    string
	Outcome   Outcome
}

type dialect struct {
	createTable string
	insert      string
	recent      string
}

// entered_at is stored as unix nanoseconds so every driver scans it the same way.
var dialects = map[string]dialect{
	DriverSQLite: {
		createTable: `CREATE TABLE IF NOT EXISTS history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entered_at INTEGER NOT NULL,
	source TEXT NOT NULL,
	outcome TEXT NOT NULL
)`,
		insert: "INSERT INTO history (entered_at, source, outcome) VALUES (?, ?, ?)",
		recent: "SELECT id, entered_at, source, outcome FROM history ORDER BY id DESC LIMIT ?",
	},
	DriverMySQL: {
		createTable: `CREATE TABLE IF NOT EXISTS history (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	entered_at BIGINT NOT NULL,
	source TEXT NOT NULL,
	outcome VARCHAR(32) NOT NULL
)`,
		insert: "INSERT INTO history (entered_at, source, outcome) VALUES (?, ?, ?)",
		recent: "SELECT id, entered_at, source, outcome FROM history ORDER BY id DESC LIMIT ?",
	},
	DriverPostgres: {
		createTable: `CREATE TABLE IF NOT EXISTS history (
	id BIGSERIAL PRIMARY KEY,
	entered_at BIGINT NOT NULL,
	source TEXT NOT NULL,
	outcome VARCHAR(32) NOT NULL
)`,
		insert: "INSERT INTO history (entered_at, source, outcome) VALUES ($1, $2, $3)",
		recent: "SELECT id, entered_at, source, outcome FROM history ORDER BY id DESC LIMIT $1",
	},
}

// Store persists REPL input through database/sql.
type Store struct {
	db      *sql.DB
	driver  string
	dialect dialect
}

// Open connects with driver ("sqlite3", "mysql" or "postgres") and creates
// the history table when it does not exist yet.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported history driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}
	if _, err := db.ExecContext(ctx, d.createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	slog.Debug("history store opened", slog.String("driver", driver))
	return &Store{db: db, driver: driver, dialect: d}, nil
}

func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.EnteredAt.IsZero() {
		e.EnteredAt = time.Now()
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.insert, e.EnteredAt.UnixNano(), e.Source, string(e.Outcome)); err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}

	slog.Debug("history recorded",
		slog.String("driver", s.driver),
		slog.String("outcome", string(e.Outcome)))
	return nil
}

// Recent returns up to limit entries, oldest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.recent, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			nanos   int64
			outcome string
		)
		if err := rows.Scan(&e.ID, &nanos, &e.Source, &outcome); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		e.EnteredAt = time.Unix(0, nanos)
		e.Outcome = Outcome(outcome)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
