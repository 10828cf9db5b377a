package stoploss

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedger_CooldownExpires(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 15, 40} {
		l := New()
		l.Add("AAPL", n)
		for i := 0; i < n-1; i++ {
			l.Tick()
			assert.True(t, l.Contains("AAPL"), "n=%d tick=%d", n, i+1)
		}
		l.Tick()
		assert.False(t, l.Contains("AAPL"), "n=%d", n)
		assert.Equal(t, 0, l.Len())
	}
}

func TestLedger_TickEmptyIsNoop(t *testing.T) {
	t.Parallel()

	l := New()
	l.Tick()
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Entries())
}

func TestLedger_InsertionOrder(t *testing.T) {
	t.Parallel()

	l := New()
	l.Add("MSFT", 3)
	l.Add("AAPL", 1)
	l.Add("NVDA", 2)
	l.Tick()

	assert.Equal(t, []Entry{{"MSFT", 2}, {"NVDA", 1}}, l.Entries())
	assert.Equal(t, 2, l.Remaining("MSFT"))
	assert.Equal(t, 0, l.Remaining("AAPL"))
}

func TestLedger_ReAddRestartsCooldown(t *testing.T) {
	t.Parallel()

	l := New()
	l.Add("MSFT", 2)
	l.Add("AAPL", 5)
	l.Tick()
	l.Add("MSFT", 15)

	assert.Equal(t, []Entry{{"AAPL", 4}, {"MSFT", 15}}, l.Entries())
	assert.True(t, l.Contains("AAPL"))
}

func TestFromEntries(t *testing.T) {
	t.Parallel()

	l := FromEntries([]Entry{{"B", 3}, {"A", 0}, {"C", 1}})

	assert.Equal(t, []Entry{{"B", 3}, {"C", 1}}, l.Entries())
	assert.False(t, l.Contains("A"))

	var nilLedger *Ledger
	assert.False(t, nilLedger.Contains("B"))
}

func TestLedger_NilReadsEmpty(t *testing.T) {
	t.Parallel()

	var l *Ledger
	assert.NotPanics(t, l.Tick)
	assert.Zero(t, l.Len())
	assert.Zero(t, l.Remaining("AAA"))
	assert.False(t, l.Contains("AAA"))
	assert.Nil(t, l.Entries())
	assert.Zero(t, FromEntries(l.Entries()).Len())
}
