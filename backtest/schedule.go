package backtest

import (
	"fmt"
	"strings"
	"time"
)

// Schedule selects the trading days a cycle runs on.
type Schedule string

const (
	Daily      Schedule = "daily"
	MonthStart Schedule = "month_start"
)

func ParseSchedule(s string) (Schedule, error) {
	switch Schedule(strings.ToLower(strings.TrimSpace(s))) {
	case Daily, "":
		return Daily, nil
	case MonthStart:
		return MonthStart, nil
	default:
		return "", fmt.Errorf("backtest: unknown schedule %q", s)
	}
}

// Days filters ascending trading days down to the scheduled ones.
func (s Schedule) Days(trading []time.Time) []time.Time {
	var out []time.Time
	for i, d := range trading {
		if s == MonthStart && i > 0 {
			prev := trading[i-1]
			if prev.Year() == d.Year() && prev.Month() == d.Month() {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}
