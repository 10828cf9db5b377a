package engine

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/rustyeddy/rebalancer/fundamentals"
	"github.com/rustyeddy/rebalancer/journal"
	"github.com/rustyeddy/rebalancer/market"
)

var day = time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

// broker is an in-memory portfolio that fills every order at prices[sym].
type broker struct {
	positions map[string]market.Position
	cash      float64
	prices    map[string]float64

	orders  []market.Order
	reject  map[string]error
	snapErr error
}

func newBroker(cash float64) *broker {
	return &broker{
		positions: make(map[string]market.Position),
		cash:      cash,
		prices:    make(map[string]float64),
		reject:    make(map[string]error),
	}
}

// hold adds an open position marked at last.
func (b *broker) hold(sym string, qty, cost, last float64) {
	b.positions[sym] = market.Position{Symbol: sym, Quantity: qty, CostBasis: cost, LastPrice: last}
	if last > 0 {
		b.prices[sym] = last
	}
}

func (b *broker) Snapshot(ctx context.Context) (market.Portfolio, error) {
	if b.snapErr != nil {
		return market.Portfolio{}, b.snapErr
	}
	value := b.cash
	for _, p := range b.positions {
		value += p.Quantity * b.prices[p.Symbol]
	}
	return market.Portfolio{Positions: maps.Clone(b.positions), Cash: b.cash, Value: value}, nil
}

func (b *broker) OrderTarget(ctx context.Context, o market.Order) error {
	if err := b.reject[o.Symbol]; err != nil {
		return err
	}
	price := b.prices[o.Symbol]
	pos := b.positions[o.Symbol]
	delta := o.Target - pos.Quantity
	b.cash -= delta * price

	if o.Target <= 0 {
		delete(b.positions, o.Symbol)
	} else {
		if delta > 0 {
			pos.CostBasis = (pos.CostBasis*pos.Quantity + delta*price) / o.Target
		}
		pos.Symbol = o.Symbol
		pos.Quantity = o.Target
		pos.LastPrice = price
		b.positions[o.Symbol] = pos
	}
	b.orders = append(b.orders, o)
	return nil
}

// history serves fixed closes and volumes.
type history struct {
	closes  map[string][]float64
	volumes map[string][]float64
}

func newHistory() *history {
	return &history{closes: make(map[string][]float64), volumes: make(map[string][]float64)}
}

// liquid gives sym a constant close and a volume series that passes the
// default liquidity check.
func (h *history) liquid(sym string, price float64) {
	h.closes[sym] = []float64{price}
	vols := make([]float64, 52)
	for i := range vols {
		vols[i] = 1_000_000
	}
	h.volumes[sym] = vols
}

func tail(xs []float64, n int) ([]float64, error) {
	if len(xs) == 0 {
		return nil, market.ErrNoData
	}
	if n < len(xs) {
		xs = xs[len(xs)-n:]
	}
	return xs, nil
}

func (h *history) Closes(ctx context.Context, sym string, n int, asOf time.Time) ([]float64, error) {
	return tail(h.closes[sym], n)
}

func (h *history) Volumes(ctx context.Context, sym string, n int, asOf time.Time) ([]float64, error) {
	return tail(h.volumes[sym], n)
}

// memStore is an engine.Store kept in memory.
type memStore struct {
	state   *State
	loadErr error
	saveErr error
}

func (m *memStore) Load(ctx context.Context) (State, error) {
	if m.loadErr != nil {
		return State{}, m.loadErr
	}
	if m.state == nil {
		return State{}, errors.New("no state saved")
	}
	return m.state.Clone(), nil
}

func (m *memStore) Save(ctx context.Context, s State) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	c := s.Clone()
	m.state = &c
	return nil
}

type recorder struct {
	orders    []journal.OrderRecord
	positions []journal.PositionSnapshot
	err       error
}

func (r *recorder) RecordOrder(o journal.OrderRecord) error {
	r.orders = append(r.orders, o)
	return r.err
}

func (r *recorder) RecordPosition(p journal.PositionSnapshot) error {
	r.positions = append(r.positions, p)
	return r.err
}

func (r *recorder) Close() error { return nil }

// trend builds n daily returns ending on day whose compounded return is
// total percent.
func trend(n int, total float64) market.ReturnSeries {
	out := make(market.ReturnSeries, n)
	for i := range out {
		out[i] = market.DailyReturn{Date: day.AddDate(0, 0, i-n+1)}
	}
	out[0].Return = total / 100
	return out
}

func row(sym, sector string, qoq float64) fundamentals.Row {
	return fundamentals.Row{
		Symbol:  sym,
		Sector:  sector,
		Metrics: map[string]float64{fundamentals.QoQEarnings: qoq},
	}
}
