package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestReturnSeriesUntil(t *testing.T) {
	t.Parallel()

	s := ReturnSeries{{day(1), 0.01}, {day(2), 0.02}, {day(3), -0.01}}

	assert.Len(t, s.Until(day(2)), 2)
	assert.Len(t, s.Until(day(2).Add(15*time.Hour)), 2, "intraday asOf includes the day")
	assert.Len(t, s.Until(day(10)), 3)
	assert.Empty(t, s.Until(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestReturnSeriesTail(t *testing.T) {
	t.Parallel()

	s := ReturnSeries{{day(1), 0.01}, {day(2), 0.02}, {day(3), -0.01}}

	assert.Equal(t, s[1:], s.Tail(2))
	assert.Equal(t, s, s.Tail(5))
	assert.Nil(t, s.Tail(0))
}

func TestPortfolioHeld(t *testing.T) {
	t.Parallel()

	p := Portfolio{Positions: map[string]Position{
		"MSFT": {Symbol: "MSFT", Quantity: 10},
		"AAPL": {Symbol: "AAPL", Quantity: 5},
		"GONE": {Symbol: "GONE", Quantity: 0},
	}}

	assert.Equal(t, []string{"AAPL", "MSFT"}, p.Held())
}
