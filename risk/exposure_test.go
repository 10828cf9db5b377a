package risk

import (
	"testing"

	"github.com/rustyeddy/rebalancer/market"
	"github.com/stretchr/testify/assert"
)

func TestRecompute(t *testing.T) {
	t.Parallel()

	stocks := SectorStocks{
		"Technology": {"AAPL", "MSFT"},
		"Energy":     {"XOM"},
		"Finance":    {"JPM"},
	}
	positions := map[string]market.Position{
		"AAPL": {Symbol: "AAPL", Quantity: 100, LastPrice: 100},
		"MSFT": {Symbol: "MSFT", Quantity: 50, LastPrice: 200},
		"XOM":  {Symbol: "XOM", Quantity: 0, LastPrice: 90},
		"NVDA": {Symbol: "NVDA", Quantity: 10, LastPrice: 500},
	}

	got := Recompute(positions, stocks, 100_000)

	assert.Equal(t, Exposure{"Technology": 0.2}, got)
}

func TestRecompute_EmptyAndIdempotent(t *testing.T) {
	t.Parallel()

	stocks := SectorStocks{"Technology": {"AAPL"}}
	assert.Empty(t, Recompute(nil, stocks, 100_000))
	assert.Empty(t, Recompute(map[string]market.Position{}, SectorStocks{}, 100_000))

	positions := map[string]market.Position{"AAPL": {Symbol: "AAPL", Quantity: 10, LastPrice: 150}}
	a := Recompute(positions, stocks, 100_000)
	b := Recompute(positions, stocks, 100_000)
	assert.Equal(t, a, b)
}

func TestRecompute_ZeroPortfolioValue(t *testing.T) {
	t.Parallel()

	stocks := SectorStocks{"Technology": {"AAPL"}}
	positions := map[string]market.Position{"AAPL": {Symbol: "AAPL", Quantity: 10, LastPrice: 150}}

	assert.Equal(t, Exposure{"Technology": 0}, Recompute(positions, stocks, 0))
}

func TestSectorStocks(t *testing.T) {
	t.Parallel()

	s := SectorStocks{}
	s.Add("Technology", "AAPL")
	s.Add("Technology", "MSFT")
	s.Add("Technology", "AAPL")
	s.Add("", "ZZZ")

	assert.Equal(t, []string{"AAPL", "MSFT"}, s["Technology"])
	assert.Equal(t, []string{"Technology", Unclassified}, s.Sectors())

	clone := s.Clone()

	sector, ok := s.Remove("AAPL")
	assert.True(t, ok)
	assert.Equal(t, "Technology", sector)
	assert.Equal(t, []string{"MSFT"}, s["Technology"])

	_, ok = s.Remove("ZZZ")
	assert.True(t, ok)
	_, ok = s.SectorOf("ZZZ")
	assert.False(t, ok)
	assert.NotContains(t, s, Unclassified)

	_, ok = s.Remove("NOPE")
	assert.False(t, ok)

	assert.Equal(t, []string{"AAPL", "MSFT"}, clone["Technology"])
}
