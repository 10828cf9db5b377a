package engine

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/rebalancer/market"
)

// ErrInvalidPrice aborts the stop-loss and profit pass of a cycle.
var ErrInvalidPrice = errors.New("engine: invalid price")

// Outcome is the verdict of evaluating one open position or candidate.
type Outcome int

const (
	Hold Outcome = iota
	StopLossExit
	ProfitBook
	DataUnavailable
)

func (o Outcome) String() string {
	switch o {
	case Hold:
		return "HOLD"
	case StopLossExit:
		return "STOP_LOSS_EXIT"
	case ProfitBook:
		return "PROFIT_BOOK"
	case DataUnavailable:
		return "DATA_UNAVAILABLE"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Evaluation is the result for a single symbol.
type Evaluation struct {
	Symbol   string
	Outcome  Outcome
	Price    float64
	Gain     float64 // percent, 2 dp
	Exposure float64 // fraction of portfolio value
	Target   float64 // quantity to order when Outcome is an exit
}

// OrderError is an order the executor refused.
type OrderError struct {
	Order market.Order
	Err   error
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("order %s %s -> %.0f: %v", e.Order.Reason, e.Order.Symbol, e.Order.Target, e.Err)
}

func (e *OrderError) Unwrap() error { return e.Err }
