package market

import (
	"context"
	"errors"
	"time"
)

// ErrNoData is returned by History implementations when a symbol has no
// (or not enough) price/volume history up to the requested date.
var ErrNoData = errors.New("market: no data")

// History looks up trailing daily bars. Both methods return exactly n values,
// oldest first, ending at or before asOf.
type History interface {
	Closes(ctx context.Context, symbol string, n int, asOf time.Time) ([]float64, error)
	Volumes(ctx context.Context, symbol string, n int, asOf time.Time) ([]float64, error)
}

// LastClose is a convenience for the most recent close of symbol.
func LastClose(ctx context.Context, h History, symbol string, asOf time.Time) (float64, error) {
	closes, err := h.Closes(ctx, symbol, 1, asOf)
	if err != nil {
		return 0, err
	}
	if len(closes) == 0 {
		return 0, ErrNoData
	}
	return closes[len(closes)-1], nil
}
