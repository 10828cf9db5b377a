package hedge

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Schema is the ratios table the hedge basket is read from.
const Schema = `
CREATE TABLE IF NOT EXISTS etf_ratios (
	symbol TEXT PRIMARY KEY,
	share REAL NOT NULL
);
`

// SQLiteSource reads the hedge basket from an etf_ratios table.
type SQLiteSource struct {
	db *sqlx.DB
}

func NewSQLiteSource(path string) (*SQLiteSource, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("hedge: create schema: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

func (s *SQLiteSource) Allocations(ctx context.Context) (Allocations, error) {
	var out Allocations
	err := s.db.SelectContext(ctx, &out, `SELECT symbol, share FROM etf_ratios ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("hedge: load etf ratios: %w", err)
	}
	return out, nil
}

// Put inserts or replaces one ratio.
func (s *SQLiteSource) Put(ctx context.Context, a Allocation) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO etf_ratios (symbol, share) VALUES (:symbol, :share)
		 ON CONFLICT(symbol) DO UPDATE SET share = excluded.share`, a)
	return err
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
