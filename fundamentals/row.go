// Package fundamentals holds the per-cycle universe of tradable assets and
// their fundamental metrics.
package fundamentals

import "math"

// Metric names used by screening rules.
const (
	MarketCap      = "marketcap"
	Revenue        = "revenue"
	NetIncome      = "netinc"
	RnD            = "rnd"
	Liabilities    = "liabilities"
	Receivables    = "receivables"
	FreeCashFlow   = "fcf"
	QoQEarnings    = "qoq_earnings"
	YoYSales       = "yoy_sales"
	IPOYear        = "ipoyear"
	EPS            = "eps"
	Assets         = "assets"
	PE             = "pe"
	PB             = "pb"
	ROE            = "roe"
	ROA            = "roa"
	DebtToEquity   = "de"
	CurrentRatio   = "currentratio"
	GrossMargin    = "grossmargin"
	NetMargin      = "netmargin"
	EBITDA         = "ebitda"
	WorkingCapital = "workingcapital"
)

// Row is one CandidateAsset. Metrics absent from the map, or NaN, are missing.
type Row struct {
	Symbol  string
	Sector  string
	Metrics map[string]float64
}

// Value returns a metric and whether it is present.
func (r Row) Value(metric string) (float64, bool) {
	v, ok := r.Metrics[metric]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Universe is the ordered fundamentals universe for one cycle.
type Universe []Row

// Lookup finds the row for symbol.
func (u Universe) Lookup(symbol string) (Row, bool) {
	for _, r := range u {
		if r.Symbol == symbol {
			return r, true
		}
	}
	return Row{}, false
}

// Symbols returns the universe's symbols in order.
func (u Universe) Symbols() []string {
	out := make([]string, len(u))
	for i, r := range u {
		out[i] = r.Symbol
	}
	return out
}
