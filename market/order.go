package market

import "context"

// Reason tags why an order was issued.
type Reason string

const (
	ReasonBuy        Reason = "BUY"
	ReasonStopLoss   Reason = "STOP_LOSS"
	ReasonProfitBook Reason = "PROFIT_BOOK"
	ReasonFlatten    Reason = "FLATTEN"
	ReasonHedgeBuy   Reason = "HEDGE_BUY"
	ReasonHedgeExit  Reason = "HEDGE_EXIT"
)

// Order asks the executor to bring holdings of Symbol to exactly Target
// shares. It is a reconciling order, not a delta.
type Order struct {
	Symbol string
	Target float64
	Reason Reason
}

// Executor places target-quantity orders. OrderTarget must not return until
// the order has been handled; the engine relies on post-trade state.
type Executor interface {
	OrderTarget(ctx context.Context, o Order) error
}
