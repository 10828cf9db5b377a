package risk

import (
	"fmt"
	"math"
)

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation

	MinDollarVolume float64
	AvgDollarVolume float64
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Liquidity is the tradability pre-check run before a candidate is sized.
// Volumes are taken over Lookback days, ignoring the SkipRecent most recent.
type Liquidity struct {
	Lookback           int     // 52
	SkipRecent         int     // 2
	MinDollarVolume    float64 // 10_000: price * lowest daily volume
	MinAvgDollarVolume float64 // 20_000: price * mean daily volume
}

func DefaultLiquidity() Liquidity {
	return Liquidity{
		Lookback:           52,
		SkipRecent:         2,
		MinDollarVolume:    10_000,
		MinAvgDollarVolume: 20_000,
	}
}

func (l Liquidity) Validate() error {
	if l.Lookback <= 0 {
		return fmt.Errorf("liquidity.lookback must be positive")
	}
	if l.SkipRecent < 0 || l.SkipRecent >= l.Lookback {
		return fmt.Errorf("liquidity.skip_recent must be in [0, lookback)")
	}
	if l.MinDollarVolume < 0 || l.MinAvgDollarVolume < 0 {
		return fmt.Errorf("liquidity dollar volume thresholds must not be negative")
	}
	return nil
}

// Window trims a Lookback-long volume history to the days Check looks at.
func (l Liquidity) Window(volumes []float64) []float64 {
	if l.SkipRecent <= 0 {
		return volumes
	}
	if l.SkipRecent >= len(volumes) {
		return nil
	}
	return volumes[:len(volumes)-l.SkipRecent]
}

// Check evaluates a candidate's latest price against its volume window.
func (l Liquidity) Check(price float64, volumes []float64) Decision {
	d := Decision{Allowed: true}

	if price <= 0 || math.IsNaN(price) {
		d.add("INVALID_PRICE", fmt.Sprintf("price %.4f must be positive", price))
		return d
	}

	window := l.Window(volumes)
	if len(window) == 0 {
		d.add("NO_VOLUME", "no volume history")
		return d
	}

	lo, sum := math.Inf(1), 0.0
	for _, v := range window {
		lo = math.Min(lo, v)
		sum += v
	}
	avg := sum / float64(len(window))

	d.MinDollarVolume = price * lo
	d.AvgDollarVolume = price * avg

	if d.MinDollarVolume < l.MinDollarVolume {
		d.add("MIN_DOLLAR_VOLUME",
			fmt.Sprintf("min dollar volume %.2f below %.2f", d.MinDollarVolume, l.MinDollarVolume))
	}
	if d.AvgDollarVolume < l.MinAvgDollarVolume {
		d.add("AVG_DOLLAR_VOLUME",
			fmt.Sprintf("avg dollar volume %.2f below %.2f", d.AvgDollarVolume, l.MinAvgDollarVolume))
	}
	return d
}
