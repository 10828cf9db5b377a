// Package hedge supplies the instruments bought when the strategy turns
// defensive, and their target shares of the portfolio.
package hedge

import (
	"context"
	"fmt"
	"slices"
)

// Allocation is a hedge instrument and its share of portfolio value, in percent.
type Allocation struct {
	Symbol string  `json:"symbol" yaml:"symbol" db:"symbol"`
	Share  float64 `json:"share" yaml:"share" db:"share"`
}

// Allocations is an ordered hedge basket.
type Allocations []Allocation

// Total is the summed share, in percent.
func (a Allocations) Total() float64 {
	sum := 0.0
	for _, x := range a {
		sum += x.Share
	}
	return sum
}

// Validate rejects negative shares and baskets above 100% of the portfolio.
func (a Allocations) Validate() error {
	for _, x := range a {
		if x.Symbol == "" {
			return fmt.Errorf("hedge: allocation without symbol")
		}
		if x.Share < 0 {
			return fmt.Errorf("hedge: %s share %.2f is negative", x.Symbol, x.Share)
		}
	}
	if t := a.Total(); t > 100 {
		return fmt.Errorf("hedge: allocation ratios total %.2f%%, above 100%%", t)
	}
	return nil
}

// Symbols returns the basket's symbols in order.
func (a Allocations) Symbols() []string {
	out := make([]string, len(a))
	for i, x := range a {
		out[i] = x.Symbol
	}
	return out
}

// Contains reports whether symbol is a hedge instrument.
func (a Allocations) Contains(symbol string) bool {
	return slices.Contains(a.Symbols(), symbol)
}

// Source loads the current hedge basket.
type Source interface {
	Allocations(ctx context.Context) (Allocations, error)
}

// Static is a fixed basket, usually from configuration.
type Static Allocations

func (s Static) Allocations(ctx context.Context) (Allocations, error) {
	return Allocations(s), nil
}
