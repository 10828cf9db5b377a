package backtest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/rebalancer/market"
)

// Bar is one daily close and volume.
type Bar struct {
	Date   time.Time
	Close  float64
	Volume float64
}

// Bars is a daily price/volume dataset. It implements market.History.
type Bars struct {
	bySymbol map[string][]Bar
	dates    []time.Time
}

func NewBars() *Bars {
	return &Bars{bySymbol: make(map[string][]Bar)}
}

// Add appends a bar. Call Sort after adding out of order.
func (b *Bars) Add(symbol string, bar Bar) {
	bar.Date = market.Day(bar.Date)
	b.bySymbol[symbol] = append(b.bySymbol[symbol], bar)
	b.dates = nil
}

// Sort orders every symbol's bars by date.
func (b *Bars) Sort() {
	for _, bars := range b.bySymbol {
		sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	}
	b.dates = nil
}

func (b *Bars) Symbols() []string {
	out := make([]string, 0, len(b.bySymbol))
	for sym := range b.bySymbol {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Dates returns every date any symbol has a bar on, ascending.
func (b *Bars) Dates() []time.Time {
	if b.dates != nil {
		return b.dates
	}
	seen := make(map[time.Time]bool)
	for _, bars := range b.bySymbol {
		for _, bar := range bars {
			seen[bar.Date] = true
		}
	}
	out := make([]time.Time, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	b.dates = out
	return out
}

// window returns the last n bars of symbol dated on or before asOf.
func (b *Bars) window(symbol string, n int, asOf time.Time) ([]Bar, error) {
	bars := b.bySymbol[symbol]
	asOf = market.Day(asOf)
	end := sort.Search(len(bars), func(i int) bool { return bars[i].Date.After(asOf) })
	if n <= 0 || end < n {
		return nil, fmt.Errorf("%w: %s has %d bars to %s, need %d",
			market.ErrNoData, symbol, end, asOf.Format(time.DateOnly), n)
	}
	return bars[end-n : end], nil
}

func (b *Bars) Closes(ctx context.Context, symbol string, n int, asOf time.Time) ([]float64, error) {
	w, err := b.window(symbol, n, asOf)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(w))
	for i, bar := range w {
		out[i] = bar.Close
	}
	return out, nil
}

func (b *Bars) Volumes(ctx context.Context, symbol string, n int, asOf time.Time) ([]float64, error) {
	w, err := b.window(symbol, n, asOf)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(w))
	for i, bar := range w {
		out[i] = bar.Volume
	}
	return out, nil
}

// Returns derives a daily return series from symbol's closes.
func (b *Bars) Returns(symbol string) market.ReturnSeries {
	bars := b.bySymbol[symbol]
	if len(bars) < 2 {
		return nil
	}
	out := make(market.ReturnSeries, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev <= 0 {
			continue
		}
		out = append(out, market.DailyReturn{Date: bars[i].Date, Return: bars[i].Close/prev - 1})
	}
	return out
}

// ReadBars parses rows shaped like
//
//	date,symbol,close,volume
//
// where date is YYYY-MM-DD or RFC3339. A header row is allowed and empty
// rows are skipped.
func ReadBars(r io.Reader) (*Bars, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	out := NewBars()
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("bars: line %d: %w", line, err)
		}
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "date") {
			continue
		}
		if len(row) < 4 {
			return nil, fmt.Errorf("bars: line %d: want date,symbol,close,volume", line)
		}

		d, err := parseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("bars: line %d: %w", line, err)
		}
		sym := strings.TrimSpace(row[1])
		closePx, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("bars: line %d: bad close %q: %w", line, row[2], err)
		}
		vol, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("bars: line %d: bad volume %q: %w", line, row[3], err)
		}
		out.Add(sym, Bar{Date: d, Close: closePx, Volume: vol})
	}
	out.Sort()
	return out, nil
}

func LoadBars(path string) (*Bars, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBars(f)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", s)
	}
	return market.Day(t), nil
}
