// Package stoploss keeps the cooldown list of symbols that were recently
// sold at a stop-loss and may not be bought again yet.
package stoploss

// DefaultCooldown is the number of cycles a stopped-out symbol stays banned.
const DefaultCooldown = 15

// Entry is one banned symbol and the cycles left on its cooldown.
type Entry struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Days   int    `json:"days" yaml:"days"`
}

// Ledger is an insertion-ordered set of cooldown entries. It is owned by a
// single goroutine and does no locking. A nil *Ledger reads as empty.
type Ledger struct {
	entries []Entry
	index   map[string]int
}

func New() *Ledger {
	return &Ledger{index: make(map[string]int)}
}

// FromEntries rebuilds a ledger from persisted entries, keeping their order.
// Entries with no days left are dropped.
func FromEntries(entries []Entry) *Ledger {
	l := New()
	for _, e := range entries {
		if e.Days > 0 && e.Symbol != "" {
			l.Add(e.Symbol, e.Days)
		}
	}
	return l
}

// Tick decrements every entry by one and removes the ones that reach zero.
func (l *Ledger) Tick() {
	if l == nil || len(l.entries) == 0 {
		return
	}
	kept := l.entries[:0]
	for _, e := range l.entries {
		e.Days--
		if e.Days > 0 {
			kept = append(kept, e)
		}
	}
	l.entries = kept
	l.reindex()
}

// Contains reports whether symbol is still cooling down.
func (l *Ledger) Contains(symbol string) bool {
	if l == nil {
		return false
	}
	_, ok := l.index[symbol]
	return ok
}

// Add bans symbol for days cycles. Re-adding a symbol restarts its cooldown
// and moves it to the end.
func (l *Ledger) Add(symbol string, days int) {
	if days <= 0 {
		return
	}
	if i, ok := l.index[symbol]; ok {
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
	}
	l.entries = append(l.entries, Entry{Symbol: symbol, Days: days})
	l.reindex()
}

// Remaining returns the cooldown left for symbol, 0 if it is not banned.
func (l *Ledger) Remaining(symbol string) int {
	if l == nil {
		return 0
	}
	if i, ok := l.index[symbol]; ok {
		return l.entries[i].Days
	}
	return 0
}

func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Entries returns a copy of the ledger in insertion order.
func (l *Ledger) Entries() []Entry {
	if l == nil {
		return nil
	}
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) reindex() {
	clear(l.index)
	for i, e := range l.entries {
		l.index[e.Symbol] = i
	}
}
