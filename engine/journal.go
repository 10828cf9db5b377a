package engine

import (
	"time"

	"github.com/rustyeddy/rebalancer/fundamentals"
	"github.com/rustyeddy/rebalancer/journal"
	"github.com/rustyeddy/rebalancer/market"
	"github.com/rustyeddy/rebalancer/pkg/id"
	"github.com/rustyeddy/rebalancer/risk"
)

func (c *cycle) recordOrder(o market.Order, previous, price float64) {
	err := c.opts.Journal.RecordOrder(journal.OrderRecord{
		OrderID:  id.NewAt(c.asOf),
		CycleID:  c.report.CycleID,
		Time:     c.asOf,
		Symbol:   o.Symbol,
		Target:   o.Target,
		Previous: previous,
		Price:    price,
		Reason:   string(o.Reason),
	})
	if err != nil {
		c.fail("journal", err)
	}
}

// snapshot writes the end-of-cycle holdings to the journal.
func (c *cycle) snapshot() {
	pf, err := c.opts.Portfolio.Snapshot(c.ctx)
	if err != nil {
		c.fail("portfolio", err)
		return
	}
	pf.Positions = c.priced(pf)
	for _, snap := range Holdings(c.asOf, pf, c.state.SectorStocks, c.universe) {
		if err := c.opts.Journal.RecordPosition(snap); err != nil {
			c.fail("journal", err)
			return
		}
	}
}

// Holdings builds journal rows for the open positions of pf, which must
// already carry last prices. The sector comes from stocks, then universe.
func Holdings(asOf time.Time, pf market.Portfolio, stocks risk.SectorStocks, universe fundamentals.Universe) []journal.PositionSnapshot {
	var out []journal.PositionSnapshot
	for _, sym := range pf.Held() {
		pos := pf.Positions[sym]
		sector, ok := stocks.SectorOf(sym)
		if !ok {
			row, _ := universe.Lookup(sym)
			sector = risk.SectorOrUnclassified(row.Sector)
		}

		snap := journal.PositionSnapshot{
			Time:      asOf,
			Symbol:    sym,
			Sector:    sector,
			Quantity:  pos.Quantity,
			AvgPrice:  pos.CostBasis,
			LastPrice: pos.LastPrice,
		}
		snap.TotalChange = risk.Round((pos.LastPrice-pos.CostBasis)*pos.Quantity, 2)
		snap.PctTotalChange = risk.GainPct(pos.LastPrice, pos.CostBasis)
		snap.PctPort = risk.Round(100*risk.ExposureOf(pos.Quantity, pos.LastPrice, pf.Value), 2)
		out = append(out, snap)
	}
	return out
}
