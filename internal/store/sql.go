package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/bertrandstanley/Weather-Dashboard/internal/history"
)

// Dialect selects the database/sql driver and placeholder style.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) insertQuery() string {
	if d == DialectPostgres {
		return `INSERT INTO search_history (position, id, name) VALUES ($1, $2, $3)`
	}
	return `INSERT INTO search_history (position, id, name) VALUES (?, ?, ?)`
}

// SQLStore keeps the history in a search_history table. Save replaces every
// row in one transaction.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQL opens and pings a database for the given dialect.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// One writer at a time; avoids SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect, err)
	}
	return db, nil
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{
		db:      db,
		dialect: dialect,
	}
}

// Init creates the history table if needed.
func (s *SQLStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS search_history (
			position INTEGER NOT NULL,
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create search_history table: %w", err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context) ([]history.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM search_history ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer rows.Close()

	entries := []history.Entry{}
	for rows.Next() {
		var e history.Entry
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, fmt.Errorf("failed to scan search history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search history: %w", err)
	}
	return entries, nil
}

func (s *SQLStore) Save(ctx context.Context, entries []history.Entry) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM search_history`); err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}
	insert := s.dialect.insertQuery()
	for i, e := range entries {
		if _, err = tx.ExecContext(ctx, insert, i, e.ID, e.Name); err != nil {
			return fmt.Errorf("failed to insert search history row: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit search history: %w", err)
	}
	return nil
}
