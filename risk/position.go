package risk

import "math"

// Allocation is the Sizer's answer for one candidate.
type Allocation struct {
	Quantity float64 // whole shares; 0 means do not buy
	Exposure float64 // fraction of portfolio value granted
}

// Sizer turns available cash into a share quantity while respecting the
// per-sector and per-position caps.
type Sizer struct {
	MaxSectorExposure float64
	MaxSinglePosition float64
}

func NewSizer(p Policy) Sizer {
	return Sizer{
		MaxSectorExposure: p.MaxSectorExposure,
		MaxSinglePosition: p.MaxSinglePosition,
	}
}

// Size grants exposure to a candidate in sector and records it in exposure,
// so successive buys into one sector within a cycle see a shrinking budget.
//
//   - sector not yet in exposure: min(maxSingle, cash/value), recorded as is
//   - sector below the cap: min(cap-current, maxSingle, cash/value), rounded
//     to 4 decimals and added to the sector's total
//   - sector at or above the cap: nothing
//
// Quantity is floor(granted*value/price).
func (s Sizer) Size(sector string, price, cash, portfolioValue float64, exposure Exposure) Allocation {
	if price <= 0 || portfolioValue <= 0 {
		return Allocation{}
	}

	sector = SectorOrUnclassified(sector)
	available := math.Max(cash/portfolioValue, 0)

	var granted float64
	current, ok := exposure[sector]
	switch {
	case !ok:
		granted = math.Min(s.MaxSinglePosition, available)
		exposure[sector] = granted
	case current < s.MaxSectorExposure:
		granted = math.Min(s.MaxSectorExposure-current, math.Min(s.MaxSinglePosition, available))
		granted = Round(granted, 4)
		exposure[sector] += granted
	default:
		return Allocation{}
	}

	qty := math.Floor(granted * portfolioValue / price)
	if qty <= 0 {
		return Allocation{Exposure: granted}
	}
	return Allocation{Quantity: qty, Exposure: granted}
}
