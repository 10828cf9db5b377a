package backtest

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/rustyeddy/rebalancer/regime"
)

// Result is a summary of a backtest run.
type Result struct {
	RunID string
	Start time.Time
	End   time.Time

	StartValue     float64
	EndValue       float64
	ReturnPct      float64
	MaxDrawdownPct float64
	RealizedPL     float64

	TradingDays    int
	Cycles         int
	Turnover       int
	OrdersByReason map[string]int
	Errors         int
	Transitions    int
	FinalRegime    regime.Regime
}

func PrintResult(w io.Writer, r Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.DateOnly))
	fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.DateOnly))
	fmt.Fprintf(w, "Trading Days:  %d\n", r.TradingDays)
	fmt.Fprintf(w, "Cycles:        %d\n", r.Cycles)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Value:   %.2f\n", r.StartValue)
	fmt.Fprintf(w, "End Value:     %.2f\n", r.EndValue)
	fmt.Fprintf(w, "Return:        %.2f%%\n", r.ReturnPct)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", r.MaxDrawdownPct)
	fmt.Fprintf(w, "Realized P/L:  %.2f\n", r.RealizedPL)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Activity")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Turnover:      %d\n", r.Turnover)
	for _, reason := range slices.Sorted(maps.Keys(r.OrdersByReason)) {
		fmt.Fprintf(w, "  %-12s %d\n", reason, r.OrdersByReason[reason])
	}
	fmt.Fprintf(w, "Transitions:   %d\n", r.Transitions)
	fmt.Fprintf(w, "Errors:        %d\n", r.Errors)
	fmt.Fprintf(w, "Final Regime:  %s\n", r.FinalRegime)
}
