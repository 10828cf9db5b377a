// Package sim is a paper portfolio that fills target orders at the latest
// known close, for backtests and dry runs.
package sim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/rustyeddy/rebalancer/market"
)

var ErrInsufficientCash = errors.New("sim: insufficient cash")

// Portfolio implements market.PortfolioSource and market.Executor. There is
// no slippage, commission or margin. It is not safe for concurrent use.
type Portfolio struct {
	history   market.History
	asOf      time.Time
	cash      float64
	positions map[string]market.Position
	fills     []Fill
	realized  float64
}

func New(history market.History, cash float64) *Portfolio {
	return &Portfolio{
		history:   history,
		cash:      cash,
		positions: make(map[string]market.Position),
	}
}

// Restore replaces holdings and cash, e.g. from a positions file.
func (p *Portfolio) Restore(cash float64, positions []market.Position) {
	p.cash = cash
	p.positions = make(map[string]market.Position, len(positions))
	for _, pos := range positions {
		if pos.Open() {
			p.positions[pos.Symbol] = pos
		}
	}
}

// MarkToMarket moves the clock to t and reprices every holding at its
// close on or before t. Holdings without a close keep their last mark.
func (p *Portfolio) MarkToMarket(ctx context.Context, t time.Time) {
	p.asOf = t
	for sym, pos := range p.positions {
		price, err := market.LastClose(ctx, p.history, sym, t)
		if err != nil || price <= 0 {
			continue
		}
		pos.LastPrice = price
		p.positions[sym] = pos
	}
}

func (p *Portfolio) Time() time.Time { return p.asOf }
func (p *Portfolio) Cash() float64   { return p.cash }

// Value is cash plus every holding at its last mark.
func (p *Portfolio) Value() float64 {
	v := p.cash
	for _, pos := range p.positions {
		v += pos.Value(pos.LastPrice)
	}
	return v
}

func (p *Portfolio) RealizedPL() float64 { return p.realized }

// UnrealizedPL sums open profit over all holdings at their last mark.
func (p *Portfolio) UnrealizedPL() float64 {
	total := 0.0
	for _, pos := range p.positions {
		total += UnrealizedPL(pos.Quantity, pos.CostBasis, pos.LastPrice)
	}
	return total
}

func (p *Portfolio) Fills() []Fill {
	return append([]Fill(nil), p.fills...)
}

func (p *Portfolio) Snapshot(ctx context.Context) (market.Portfolio, error) {
	return market.Portfolio{
		Positions: maps.Clone(p.positions),
		Cash:      p.cash,
		Value:     p.Value(),
	}, nil
}

// OrderTarget brings the holding of o.Symbol to o.Target shares at the
// latest close.
func (p *Portfolio) OrderTarget(ctx context.Context, o market.Order) error {
	if o.Target < 0 {
		return fmt.Errorf("sim: %s: negative target %.0f", o.Symbol, o.Target)
	}
	pos := p.positions[o.Symbol]
	delta := o.Target - pos.Quantity
	if delta == 0 {
		return nil
	}

	price, err := market.LastClose(ctx, p.history, o.Symbol, p.asOf)
	if err != nil {
		return fmt.Errorf("sim: %s: %w", o.Symbol, err)
	}
	if price <= 0 {
		return fmt.Errorf("sim: %s: no valid price", o.Symbol)
	}

	fill := Fill{Time: p.asOf, Symbol: o.Symbol, Quantity: delta, Price: price, Reason: o.Reason}
	if delta > 0 {
		cost := delta * price
		if cost > p.cash+1e-9 {
			return fmt.Errorf("%w: %s needs %.2f, have %.2f", ErrInsufficientCash, o.Symbol, cost, p.cash)
		}
		p.cash -= cost
		pos.CostBasis = (pos.CostBasis*pos.Quantity + cost) / o.Target
	} else {
		p.cash += -delta * price
		fill.RealizedPL = UnrealizedPL(-delta, pos.CostBasis, price)
		p.realized += fill.RealizedPL
	}
	p.fills = append(p.fills, fill)

	if o.Target == 0 {
		delete(p.positions, o.Symbol)
		return nil
	}
	pos.Symbol = o.Symbol
	pos.Quantity = o.Target
	pos.LastPrice = price
	p.positions[o.Symbol] = pos
	return nil
}
