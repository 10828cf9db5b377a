package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const orderColumns = `order_id, cycle_id, time, symbol, target, previous, price, reason`

// GetOrder returns a single order record by ID.
func (j *SQLite) GetOrder(orderID string) (OrderRecord, error) {
	var rec OrderRecord
	err := j.db.Get(&rec, `SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return OrderRecord{}, fmt.Errorf("order %q not found", orderID)
	}
	return rec, err
}

// ListOrders returns orders whose time is within [start, end).
func (j *SQLite) ListOrders(start, end time.Time) ([]OrderRecord, error) {
	var out []OrderRecord
	err := j.db.Select(&out, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, order_id ASC`, start.UTC(), end.UTC())
	return out, err
}

// ListOrdersByCycle returns the orders issued by one cycle, in issue order.
func (j *SQLite) ListOrdersByCycle(cycleID string) ([]OrderRecord, error) {
	var out []OrderRecord
	err := j.db.Select(&out, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE cycle_id = ?
		ORDER BY order_id ASC`, cycleID)
	return out, err
}

// ListPositionsAt returns the snapshot rows written at exactly t.
func (j *SQLite) ListPositionsAt(t time.Time) ([]PositionSnapshot, error) {
	var out []PositionSnapshot
	err := j.db.Select(&out, `
		SELECT time, symbol, sector, quantity, avg_price, last_price, total_change, pct_total_change, pct_port
		FROM positions
		WHERE time = ?
		ORDER BY symbol ASC`, t.UTC())
	return out, err
}

// LatestPositions returns the most recent snapshot.
func (j *SQLite) LatestPositions() ([]PositionSnapshot, error) {
	var latest time.Time
	err := j.db.Get(&latest, `SELECT time FROM positions ORDER BY time DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return j.ListPositionsAt(latest)
}
