package engine

import (
	"time"

	"github.com/rustyeddy/rebalancer/market"
	"github.com/rustyeddy/rebalancer/regime"
)

// Transition names a regime change that happened during a cycle.
type Transition string

const (
	NoTransition Transition = ""
	ToDefensive  Transition = "INVESTED->DEFENSIVE"
	ToInvested   Transition = "DEFENSIVE->INVESTED"
)

// Report describes what one RunCycle call did.
type Report struct {
	AsOf       time.Time
	CycleID    string
	Signal     float64
	Regime     regime.Regime // after the cycle
	Transition Transition

	// Orders the executor accepted, in issue order.
	Orders []market.Order
	// Outcomes of the position pass and of candidates with missing data.
	Outcomes []Evaluation
	// Errors the cycle recovered from.
	Errors []error
	// Skipped is set when the cycle already ran this session.
	Skipped bool
	// Turnover is the number of orders this cycle added to the counter.
	Turnover int
}

// OrdersBy returns the accepted orders with the given reason.
func (r Report) OrdersBy(reason market.Reason) []market.Order {
	var out []market.Order
	for _, o := range r.Orders {
		if o.Reason == reason {
			out = append(out, o)
		}
	}
	return out
}

// Outcome returns the evaluation recorded for symbol, if any.
func (r Report) Outcome(symbol string) (Evaluation, bool) {
	for _, ev := range r.Outcomes {
		if ev.Symbol == symbol {
			return ev, true
		}
	}
	return Evaluation{}, false
}
