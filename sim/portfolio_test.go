package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/rebalancer/market"
)

// closes is a History keyed by day.
type closes map[string]map[time.Time]float64

func (c closes) Closes(ctx context.Context, sym string, n int, asOf time.Time) ([]float64, error) {
	var best time.Time
	for d := range c[sym] {
		if !d.After(asOf) && d.After(best) {
			best = d
		}
	}
	if best.IsZero() {
		return nil, market.ErrNoData
	}
	return []float64{c[sym][best]}, nil
}

func (c closes) Volumes(ctx context.Context, sym string, n int, asOf time.Time) ([]float64, error) {
	return nil, market.ErrNoData
}

var (
	d1 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 = d1.AddDate(0, 0, 1)
)

func TestPortfolioBuySellMark(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := closes{"AAA": {d1: 10, d2: 12}}
	p := New(h, 1_000)
	p.MarkToMarket(ctx, d1)

	require.NoError(t, p.OrderTarget(ctx, market.Order{Symbol: "AAA", Target: 50, Reason: market.ReasonBuy}))
	assert.InDelta(t, 500, p.Cash(), 1e-9)
	assert.InDelta(t, 1_000, p.Value(), 1e-9)

	require.NoError(t, p.OrderTarget(ctx, market.Order{Symbol: "AAA", Target: 100, Reason: market.ReasonBuy}))
	snap, err := p.Snapshot(ctx)
	require.NoError(t, err)
	pos, ok := snap.Position("AAA")
	require.True(t, ok)
	assert.InDelta(t, 100, pos.Quantity, 0)
	assert.InDelta(t, 10, pos.CostBasis, 1e-9)

	p.MarkToMarket(ctx, d2)
	assert.InDelta(t, 1_200, p.Value(), 1e-9)
	assert.InDelta(t, 200, p.UnrealizedPL(), 1e-9)

	require.NoError(t, p.OrderTarget(ctx, market.Order{Symbol: "AAA", Target: 40, Reason: market.ReasonProfitBook}))
	assert.InDelta(t, 720, p.Cash(), 1e-9)
	assert.InDelta(t, 120, p.RealizedPL(), 1e-9)

	require.NoError(t, p.OrderTarget(ctx, market.Order{Symbol: "AAA", Target: 0, Reason: market.ReasonStopLoss}))
	snap, _ = p.Snapshot(ctx)
	assert.Empty(t, snap.Held())
	assert.InDelta(t, 1_200, p.Cash(), 1e-9)

	fills := p.Fills()
	require.Len(t, fills, 4)
	assert.InDelta(t, -40, fills[3].Quantity, 0)
	assert.Equal(t, market.ReasonStopLoss, fills[3].Reason)
}

func TestPortfolioRejects(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := New(closes{"AAA": {d1: 10}}, 100)
	p.MarkToMarket(ctx, d1)

	err := p.OrderTarget(ctx, market.Order{Symbol: "AAA", Target: 11})
	assert.ErrorIs(t, err, ErrInsufficientCash)

	err = p.OrderTarget(ctx, market.Order{Symbol: "NOPE", Target: 1})
	assert.ErrorIs(t, err, market.ErrNoData)

	assert.Error(t, p.OrderTarget(ctx, market.Order{Symbol: "AAA", Target: -1}))
	assert.Empty(t, p.Fills())
}

func TestPortfolioRestore(t *testing.T) {
	t.Parallel()

	p := New(closes{}, 0)
	p.Restore(500, []market.Position{
		{Symbol: "AAA", Quantity: 10, CostBasis: 5, LastPrice: 6},
		{Symbol: "GONE", Quantity: 0},
	})

	snap, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA"}, snap.Held())
	assert.InDelta(t, 560, snap.Value, 1e-9)
}
