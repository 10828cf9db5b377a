package risk

import "github.com/shopspring/decimal"

// Round rounds x half away from zero to places decimals.
func Round(x float64, places int32) float64 {
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// GainPct is the net gain/loss of a position, in percent of its cost basis,
// rounded to two decimals. A non-positive cost basis yields 0.
func GainPct(price, costBasis float64) float64 {
	if costBasis <= 0 {
		return 0
	}
	return Round((price-costBasis)*100/costBasis, 2)
}

// ExposureOf is the fraction of portfolio value held in qty shares at price.
func ExposureOf(qty, price, portfolioValue float64) float64 {
	if portfolioValue == 0 {
		return 0
	}
	return qty * price / portfolioValue
}
