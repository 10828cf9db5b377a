package journal

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sqlx.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordOrder(o OrderRecord) error {
	o.Time = o.Time.UTC()
	_, err := j.db.NamedExec(`
		INSERT INTO orders
		(order_id, cycle_id, time, symbol, target, previous, price, reason)
		VALUES (:order_id, :cycle_id, :time, :symbol, :target, :previous, :price, :reason)`, o)
	return err
}

func (j *SQLite) RecordPosition(p PositionSnapshot) error {
	p.Time = p.Time.UTC()
	_, err := j.db.NamedExec(`
		INSERT INTO positions
		(time, symbol, sector, quantity, avg_price, last_price, total_change, pct_total_change, pct_port)
		VALUES (:time, :symbol, :sector, :quantity, :avg_price, :last_price, :total_change, :pct_total_change, :pct_port)`, p)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
