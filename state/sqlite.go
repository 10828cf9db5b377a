package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/rebalancer/engine"
	"github.com/rustyeddy/rebalancer/regime"
	"github.com/rustyeddy/rebalancer/stoploss"
)

const Schema = `
CREATE TABLE IF NOT EXISTS stop_loss (
	seq INTEGER NOT NULL,
	symbol TEXT PRIMARY KEY,
	days INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sector_stocks (
	sector TEXT NOT NULL,
	seq INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	PRIMARY KEY (sector, symbol)
);

CREATE TABLE IF NOT EXISTS engine_meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const regimeKey = "regime"

// SQLiteStore keeps the state in three tables of a sqlite database.
type SQLiteStore struct {
	db *sqlx.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("state: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

type stopLossRow struct {
	Seq    int    `db:"seq"`
	Symbol string `db:"symbol"`
	Days   int    `db:"days"`
}

type sectorRow struct {
	Sector string `db:"sector"`
	Seq    int    `db:"seq"`
	Symbol string `db:"symbol"`
}

func (s *SQLiteStore) Load(ctx context.Context) (engine.State, error) {
	var doc Document

	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM engine_meta WHERE key = ?`, regimeKey)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		doc.Regime = regime.Invested
	case err != nil:
		return engine.State{}, fmt.Errorf("state: load regime: %w", err)
	default:
		if doc.Regime, err = regime.Parse(value); err != nil {
			return engine.State{}, fmt.Errorf("state: %w", err)
		}
	}

	var stops []stopLossRow
	if err := s.db.SelectContext(ctx, &stops, `SELECT seq, symbol, days FROM stop_loss ORDER BY seq`); err != nil {
		return engine.State{}, fmt.Errorf("state: load stop_loss: %w", err)
	}
	for _, r := range stops {
		doc.StopLoss = append(doc.StopLoss, stoploss.Entry{Symbol: r.Symbol, Days: r.Days})
	}

	var sectors []sectorRow
	if err := s.db.SelectContext(ctx, &sectors, `SELECT sector, seq, symbol FROM sector_stocks ORDER BY sector, seq`); err != nil {
		return engine.State{}, fmt.Errorf("state: load sector_stocks: %w", err)
	}
	doc.SectorStocks = make(map[string][]string)
	for _, r := range sectors {
		doc.SectorStocks[r.Sector] = append(doc.SectorStocks[r.Sector], r.Symbol)
	}

	return doc.Engine(), nil
}

// Save replaces all stored state in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, st engine.State) error {
	doc := FromEngine(st)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("state: begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{`DELETE FROM stop_loss`, `DELETE FROM sector_stocks`} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("state: clear: %w", err)
		}
	}

	for i, e := range doc.StopLoss {
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO stop_loss (seq, symbol, days) VALUES (:seq, :symbol, :days)`,
			stopLossRow{Seq: i, Symbol: e.Symbol, Days: e.Days}); err != nil {
			return fmt.Errorf("state: save stop_loss: %w", err)
		}
	}

	for sector, syms := range doc.SectorStocks {
		for i, sym := range syms {
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO sector_stocks (sector, seq, symbol) VALUES (:sector, :seq, :symbol)`,
				sectorRow{Sector: sector, Seq: i, Symbol: sym}); err != nil {
				return fmt.Errorf("state: save sector_stocks: %w", err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO engine_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		regimeKey, doc.Regime.String()); err != nil {
		return fmt.Errorf("state: save regime: %w", err)
	}

	return tx.Commit()
}

// Reset deletes all stored state.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	return s.Save(ctx, engine.NewState())
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
