package risk

import (
	"slices"
	"sort"

	"github.com/rustyeddy/rebalancer/market"
)

// Unclassified is the pseudo-sector for assets without a classification.
const Unclassified = "UNCLASSIFIED"

// SectorOrUnclassified maps an empty classification to Unclassified.
func SectorOrUnclassified(sector string) string {
	if sector == "" {
		return Unclassified
	}
	return sector
}

// SectorStocks maps a sector to the symbols bought into it, in purchase order.
type SectorStocks map[string][]string

// Add records symbol under sector. It is a no-op if already recorded there.
func (s SectorStocks) Add(sector, symbol string) {
	sector = SectorOrUnclassified(sector)
	if slices.Contains(s[sector], symbol) {
		return
	}
	s[sector] = append(s[sector], symbol)
}

// Remove drops symbol from whichever sector holds it and returns that sector.
// Sectors left empty are deleted.
func (s SectorStocks) Remove(symbol string) (string, bool) {
	for sector, syms := range s {
		i := slices.Index(syms, symbol)
		if i < 0 {
			continue
		}
		syms = slices.Delete(syms, i, i+1)
		if len(syms) == 0 {
			delete(s, sector)
		} else {
			s[sector] = syms
		}
		return sector, true
	}
	return "", false
}

// SectorOf returns the sector symbol is recorded under.
func (s SectorStocks) SectorOf(symbol string) (string, bool) {
	for sector, syms := range s {
		if slices.Contains(syms, symbol) {
			return sector, true
		}
	}
	return "", false
}

// Sectors returns the recorded sectors in sorted order.
func (s SectorStocks) Sectors() []string {
	out := make([]string, 0, len(s))
	for sector := range s {
		out = append(out, sector)
	}
	sort.Strings(out)
	return out
}

func (s SectorStocks) Clone() SectorStocks {
	out := make(SectorStocks, len(s))
	for sector, syms := range s {
		out[sector] = slices.Clone(syms)
	}
	return out
}

// Exposure maps a sector to the fraction of portfolio value committed to it.
type Exposure map[string]float64

// Recompute derives sector exposure from scratch: for every sector in stocks
// it sums last*qty/value over the recorded symbols that are still open in
// positions. Sectors with no open holding are left out. A zero portfolio
// value yields zero exposure for every held sector. Positions must carry a
// resolved LastPrice.
func Recompute(positions map[string]market.Position, stocks SectorStocks, portfolioValue float64) Exposure {
	out := make(Exposure)
	for sector, syms := range stocks {
		held := false
		total := 0.0
		for _, sym := range syms {
			pos, ok := positions[sym]
			if !ok || !pos.Open() {
				continue
			}
			held = true
			total += ExposureOf(pos.Quantity, pos.LastPrice, portfolioValue)
		}
		if held {
			out[sector] = total
		}
	}
	return out
}

func (e Exposure) Clone() Exposure {
	out := make(Exposure, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
