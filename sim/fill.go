package sim

import (
	"time"

	"github.com/rustyeddy/rebalancer/market"
)

// Fill is one executed target order.
type Fill struct {
	Time       time.Time
	Symbol     string
	Quantity   float64 // signed change in shares
	Price      float64
	Reason     market.Reason
	RealizedPL float64 // only on sells
}

// UnrealizedPL is the open profit of qty shares bought at entry.
func UnrealizedPL(qty, entry, current float64) float64 {
	return qty * (current - entry)
}
