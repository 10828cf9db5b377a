package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatOrderOrg(t *testing.T) {
	t.Parallel()

	o := OrderRecord{
		OrderID:  "01HZX0000000000000ABCDEFGH",
		CycleID:  "01HZX00000000000000000CYCL",
		Time:     time.Date(2024, 3, 15, 15, 0, 0, 0, time.UTC),
		Symbol:   "AAPL",
		Target:   6,
		Previous: 12,
		Price:    120.5,
		Reason:   "PROFIT_BOOK",
	}

	out := FormatOrderOrg(o)
	assert.True(t, strings.HasPrefix(out, "** PROFIT_BOOK AAPL (ABCDEFGH)"))
	assert.Contains(t, out, ":ORDER_ID: 01HZX0000000000000ABCDEFGH")
	assert.Contains(t, out, ":TIME: 2024-03-15T15:00:00Z")
	assert.Contains(t, out, ":PREVIOUS: 12")
	assert.Contains(t, out, ":TARGET: 6")
	assert.Contains(t, out, ":PRICE: 120.5000")
	assert.Contains(t, out, ":END:")
}

func TestFormatCycleOrg(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "* Cycle C1\n- no orders\n", FormatCycleOrg("C1", nil))

	out := FormatCycleOrg("C2", []OrderRecord{
		{OrderID: "a", Symbol: "AAPL", Reason: "BUY"},
		{OrderID: "b", Symbol: "MSFT", Reason: "BUY"},
	})
	assert.Equal(t, 2, strings.Count(out, ":PROPERTIES:"))
	assert.Contains(t, out, "** BUY MSFT (b)")
}

func TestFormatTables(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 15, 15, 0, 0, 0, time.UTC)
	out := FormatOrdersTable([]OrderRecord{
		{Time: ts, Symbol: "AAPL", Reason: "BUY", Target: 10, Price: 101.25},
	})
	assert.Contains(t, out, "ORDERS")
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "101.25")
	assert.Contains(t, out, "2024-03-15")

	out = FormatPositionsTable([]PositionSnapshot{
		{Symbol: "MSFT", Sector: "Technology", Quantity: 4, PctPort: 12.5},
	})
	assert.Contains(t, out, "HOLDINGS")
	assert.Contains(t, out, "Technology")
	assert.Contains(t, out, "12.50")
}
