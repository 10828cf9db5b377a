package engine

import (
	"context"

	"github.com/rustyeddy/rebalancer/regime"
	"github.com/rustyeddy/rebalancer/risk"
	"github.com/rustyeddy/rebalancer/stoploss"
)

// State is everything the engine carries from one cycle to the next.
type State struct {
	Regime       regime.Regime
	Ledger       *stoploss.Ledger
	SectorStocks risk.SectorStocks
	// Exposure is rebuilt every invested cycle and never persisted.
	Exposure risk.Exposure
	// Turnover counts orders placed since the process started. Decisions
	// never read it.
	Turnover int
}

// NewState is the empty starting state: invested, nothing banned, nothing held.
func NewState() State {
	return State{
		Regime:       regime.Invested,
		Ledger:       stoploss.New(),
		SectorStocks: make(risk.SectorStocks),
		Exposure:     make(risk.Exposure),
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	s.normalize()
	out := s
	out.Ledger = stoploss.FromEntries(s.Ledger.Entries())
	out.SectorStocks = s.SectorStocks.Clone()
	out.Exposure = s.Exposure.Clone()
	return out
}

func (s *State) normalize() {
	if s.Ledger == nil {
		s.Ledger = stoploss.New()
	}
	if s.SectorStocks == nil {
		s.SectorStocks = make(risk.SectorStocks)
	}
	if s.Exposure == nil {
		s.Exposure = make(risk.Exposure)
	}
}

// Store persists the regime, the stop-loss ledger and the sector stocks
// between sessions.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
}
