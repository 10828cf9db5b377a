package market

import (
	"context"
	"sort"
)

// Position is one holding in a portfolio snapshot. The engine never mutates it.
type Position struct {
	Symbol    string
	Quantity  float64
	CostBasis float64 // average entry price
	LastPrice float64 // 0 when no trade has printed yet this session
}

// Open reports whether the position is considered held.
func (p Position) Open() bool {
	return p.Quantity > 0
}

// Value is the marked value of the position at price.
func (p Position) Value(price float64) float64 {
	return p.Quantity * price
}

// Portfolio is a read-only snapshot supplied by the execution collaborator.
type Portfolio struct {
	Positions map[string]Position
	Cash      float64
	Value     float64 // total portfolio value, cash included
}

// Position returns the holding for symbol, if any.
func (p Portfolio) Position(symbol string) (Position, bool) {
	pos, ok := p.Positions[symbol]
	return pos, ok
}

// Held returns the symbols of all open positions in sorted order.
func (p Portfolio) Held() []string {
	out := make([]string, 0, len(p.Positions))
	for sym, pos := range p.Positions {
		if pos.Open() {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

// PortfolioSource yields the current portfolio snapshot.
type PortfolioSource interface {
	Snapshot(ctx context.Context) (Portfolio, error)
}
