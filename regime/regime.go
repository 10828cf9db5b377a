package regime

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/rebalancer/market"
)

// DefaultPeriod is the trailing window, in daily returns, of the trend signal.
const DefaultPeriod = 200

// Regime is the strategy's current market stance.
type Regime int

const (
	Invested Regime = iota
	Defensive
)

func (r Regime) String() string {
	switch r {
	case Invested:
		return "INVESTED"
	case Defensive:
		return "DEFENSIVE"
	default:
		return "UNKNOWN"
	}
}

func (r Regime) MarshalText() ([]byte, error) {
	if r != Invested && r != Defensive {
		return nil, fmt.Errorf("regime: invalid value %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Regime) UnmarshalText(b []byte) error {
	p, err := Parse(string(b))
	if err != nil {
		return err
	}
	*r = p
	return nil
}

// Parse accepts the String form, case-insensitively.
func Parse(s string) (Regime, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INVESTED", "":
		return Invested, nil
	case "DEFENSIVE":
		return Defensive, nil
	default:
		return Invested, fmt.Errorf("regime: unknown regime %q", s)
	}
}

// TrendSignal is the compounded benchmark return, in percent, over the last
// period returns dated on or before asOf. With fewer than period observations
// it returns 0, which never triggers the defensive regime.
func TrendSignal(series market.ReturnSeries, period int, asOf time.Time) float64 {
	if period <= 0 {
		return 0
	}
	hist := series.Until(asOf)
	if len(hist) < period {
		return 0
	}
	prod := 1.0
	for _, r := range hist.Tail(period) {
		prod *= 1 + r.Return
	}
	return 100 * (prod - 1)
}

// Detector turns the trend signal into regime transitions.
type Detector struct {
	Period int
	// ReenterAbove is the signal a defensive portfolio must reach before it
	// is invested again.
	ReenterAbove float64
}

func NewDetector() Detector {
	return Detector{Period: DefaultPeriod}
}

func (d Detector) Signal(series market.ReturnSeries, asOf time.Time) float64 {
	period := d.Period
	if period == 0 {
		period = DefaultPeriod
	}
	return TrendSignal(series, period, asOf)
}

// Next returns the regime that follows current given signal.
func (d Detector) Next(current Regime, signal float64) Regime {
	switch current {
	case Invested:
		if signal < 0 {
			return Defensive
		}
	case Defensive:
		if signal >= d.ReenterAbove && signal >= 0 {
			return Invested
		}
	}
	return current
}
