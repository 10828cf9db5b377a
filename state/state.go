// Package state persists the engine's cross-session state: the regime, the
// stop-loss ledger and the sector stocks map.
package state

import (
	"github.com/rustyeddy/rebalancer/engine"
	"github.com/rustyeddy/rebalancer/regime"
	"github.com/rustyeddy/rebalancer/stoploss"
)

// Document is the serialized form of engine.State.
type Document struct {
	Regime       regime.Regime       `yaml:"regime" json:"regime"`
	StopLoss     []stoploss.Entry    `yaml:"stop_loss" json:"stop_loss"`
	SectorStocks map[string][]string `yaml:"sector_stocks" json:"sector_stocks"`
}

func FromEngine(s engine.State) Document {
	return Document{
		Regime:       s.Regime,
		StopLoss:     s.Ledger.Entries(),
		SectorStocks: s.SectorStocks.Clone(),
	}
}

func (d Document) Engine() engine.State {
	s := engine.NewState()
	s.Regime = d.Regime
	s.Ledger = stoploss.FromEntries(d.StopLoss)
	for sector, syms := range d.SectorStocks {
		for _, sym := range syms {
			s.SectorStocks.Add(sector, sym)
		}
	}
	return s
}
