package journal

import (
	"time"
)

// OrderRecord is one target-quantity order issued by a cycle.
type OrderRecord struct {
	OrderID  string    `db:"order_id"`
	CycleID  string    `db:"cycle_id"`
	Time     time.Time `db:"time"`
	Symbol   string    `db:"symbol"`
	Target   float64   `db:"target"`
	Previous float64   `db:"previous"`
	Price    float64   `db:"price"`
	Reason   string    `db:"reason"`
}

// Delta is the signed quantity change the order asks for.
func (o OrderRecord) Delta() float64 {
	return o.Target - o.Previous
}

// PositionSnapshot is a holding as seen at the end of a cycle.
type PositionSnapshot struct {
	Time           time.Time `db:"time"`
	Symbol         string    `db:"symbol"`
	Sector         string    `db:"sector"`
	Quantity       float64   `db:"quantity"`
	AvgPrice       float64   `db:"avg_price"`
	LastPrice      float64   `db:"last_price"`
	TotalChange    float64   `db:"total_change"`
	PctTotalChange float64   `db:"pct_total_change"`
	PctPort        float64   `db:"pct_port"`
}

type Journal interface {
	RecordOrder(OrderRecord) error
	RecordPosition(PositionSnapshot) error
	Close() error
}

// Discard drops everything.
type Discard struct{}

func (Discard) RecordOrder(OrderRecord) error         { return nil }
func (Discard) RecordPosition(PositionSnapshot) error { return nil }
func (Discard) Close() error                          { return nil }
