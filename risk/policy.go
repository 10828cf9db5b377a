package risk

import "fmt"

// Policy holds the exposure and exit limits of a strategy.
type Policy struct {
	// Exposure limits, as fractions of portfolio value
	MaxSectorExposure float64 // 0.21 .. 0.25
	MaxSinglePosition float64 // 0.07
	MaxPositions      int     // 25

	// Exits
	StopLossPct        float64 // -3: net gain/loss in percent at or below which a position is closed
	ProfitBookExposure float64 // 0.15: single-position exposure above which half is sold
	CooldownDays       int     // 15
}

// DefaultPolicy mirrors the low-risk strategy's limits.
func DefaultPolicy() Policy {
	return Policy{
		MaxSectorExposure:  0.25,
		MaxSinglePosition:  0.07,
		MaxPositions:       25,
		StopLossPct:        -3,
		ProfitBookExposure: 0.15,
		CooldownDays:       15,
	}
}

func (p Policy) Validate() error {
	if p.MaxSectorExposure <= 0 || p.MaxSectorExposure > 1 {
		return fmt.Errorf("max_sector_exposure must be in (0, 1]")
	}
	if p.MaxSinglePosition <= 0 || p.MaxSinglePosition > p.MaxSectorExposure {
		return fmt.Errorf("max_single_position must be in (0, max_sector_exposure]")
	}
	if p.MaxPositions <= 0 {
		return fmt.Errorf("max_positions must be positive")
	}
	if p.StopLossPct >= 0 {
		return fmt.Errorf("stop_loss_pct must be negative")
	}
	if p.ProfitBookExposure <= 0 || p.ProfitBookExposure > 1 {
		return fmt.Errorf("profit_book_exposure must be in (0, 1]")
	}
	if p.CooldownDays <= 0 {
		return fmt.Errorf("cooldown_days must be positive")
	}
	return nil
}
