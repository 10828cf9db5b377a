package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/rebalancer/backtest"
	"github.com/rustyeddy/rebalancer/engine"
	"github.com/rustyeddy/rebalancer/fundamentals"
	"github.com/rustyeddy/rebalancer/journal"
	"github.com/rustyeddy/rebalancer/market"
	"github.com/rustyeddy/rebalancer/regime"
	"github.com/rustyeddy/rebalancer/risk"
	"github.com/rustyeddy/rebalancer/sim"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one session against a positions file",
	Long: `Run loads the persisted engine state, runs a single rebalancing cycle for the
session day against the holdings in a positions file, prints the resulting
orders and saves the state again.

Orders are filled by the paper portfolio at the session's closes. With
--write the positions file is rewritten with the post-trade holdings, so
successive runs behave like a live account.

Example:
  rebalancer run -c rebalancer.yaml --positions holdings.csv \
    --bars data/bars.csv --benchmark data/spx.csv --fundamentals data/latest.csv --write`,
	RunE: runRun,
}

var (
	runPositionsPath    string
	runBarsPath         string
	runBenchmarkPath    string
	runFundamentalsPath string
	runAsOf             string
	runWrite            bool
	runMetricsPath      string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runPositionsPath, "positions", "p", "", "positions CSV: symbol,quantity,cost_basis (required)")
	runCmd.Flags().StringVarP(&runBarsPath, "bars", "b", "", "daily bars CSV (required)")
	runCmd.Flags().StringVar(&runBenchmarkPath, "benchmark", "", "benchmark returns CSV (required)")
	runCmd.Flags().StringVarP(&runFundamentalsPath, "fundamentals", "u", "", "fundamentals CSV (required)")
	runCmd.Flags().StringVar(&runAsOf, "as-of", "", "session day, YYYY-MM-DD (default last bar)")
	runCmd.Flags().BoolVarP(&runWrite, "write", "w", false, "rewrite the positions file after trading")
	runCmd.Flags().StringVar(&runMetricsPath, "metrics-file", "", "write Prometheus metrics to this path")

	runCmd.MarkFlagRequired("positions")
	runCmd.MarkFlagRequired("bars")
	runCmd.MarkFlagRequired("benchmark")
	runCmd.MarkFlagRequired("fundamentals")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	bars, err := backtest.LoadBars(runBarsPath)
	if err != nil {
		return fmt.Errorf("bars: %w", err)
	}
	bench, err := backtest.LoadBenchmark(runBenchmarkPath)
	if err != nil {
		return fmt.Errorf("benchmark: %w", err)
	}
	universe, err := fundamentals.LoadCSV(runFundamentalsPath)
	if err != nil {
		return fmt.Errorf("fundamentals: %w", err)
	}
	held, err := loadPositions(runPositionsPath)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	asOf, err := optionalDate(runAsOf)
	if err != nil {
		return fmt.Errorf("--as-of: %w", err)
	}
	if asOf.IsZero() {
		dates := bars.Dates()
		if len(dates) == 0 {
			return fmt.Errorf("bars: no data")
		}
		asOf = dates[len(dates)-1]
	}

	ctx := cmd.Context()
	cash := cfg.Account.Cash
	if held.Cash != nil {
		cash = *held.Cash
	}
	paper := sim.New(bars, cash)
	paper.Restore(cash, held.Positions)
	paper.MarkToMarket(ctx, asOf)

	s, err := newSession(cfg, bars, paper, paper)
	if err != nil {
		return err
	}
	defer s.Close()

	// A missing or unreadable store starts the strategy from scratch.
	_ = s.Engine.Load(ctx)
	s.Engine.SetState(adoptHoldings(s.Engine.State(), held.Positions, universe))
	s.Engine.StartSession(asOf)

	rep, err := s.Engine.RunCycle(ctx, asOf, bench, universe)
	if err != nil {
		return fmt.Errorf("cycle: %w", err)
	}
	if err := s.Engine.Save(ctx); err != nil {
		logger.Warn().Err(err).Msg("state not saved")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session %s  cycle %s\n", asOf.Format(time.DateOnly), rep.CycleID)
	fmt.Fprintf(out, "Signal %.2f%%  regime %s", rep.Signal, rep.Regime)
	if rep.Transition != engine.NoTransition {
		fmt.Fprintf(out, "  (%s)", rep.Transition)
	}
	fmt.Fprintln(out)
	for _, e := range rep.Errors {
		fmt.Fprintf(out, "  ! %v\n", e)
	}

	fmt.Fprintln(out, journal.FormatOrdersTable(fillRecords(rep.CycleID, held.Positions, paper.Fills())))

	after, err := paper.Snapshot(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, journal.FormatPositionsTable(engine.Holdings(asOf, after, s.Engine.State().SectorStocks, universe)))
	fmt.Fprintf(out, "Cash %.2f  Value %.2f\n", after.Cash, after.Value)

	if runWrite {
		if err := savePositions(runPositionsPath, after); err != nil {
			return fmt.Errorf("write positions: %w", err)
		}
	}
	return s.writeMetrics(runMetricsPath)
}

// fillRecords turns paper fills into journal rows, replaying quantities
// from the starting holdings.
func fillRecords(cycleID string, start []market.Position, fills []sim.Fill) []journal.OrderRecord {
	qty := make(map[string]float64, len(start))
	for _, p := range start {
		qty[p.Symbol] = p.Quantity
	}
	out := make([]journal.OrderRecord, 0, len(fills))
	for _, f := range fills {
		prev := qty[f.Symbol]
		qty[f.Symbol] = prev + f.Quantity
		out = append(out, journal.OrderRecord{
			CycleID:  cycleID,
			Time:     f.Time,
			Symbol:   f.Symbol,
			Previous: prev,
			Target:   prev + f.Quantity,
			Price:    f.Price,
			Reason:   string(f.Reason),
		})
	}
	return out
}

// adoptHoldings records the sector of held symbols the state does not know
// yet, so sector caps count them. Only invested holdings found in the
// universe are adopted.
func adoptHoldings(st engine.State, held []market.Position, universe fundamentals.Universe) engine.State {
	if st.Regime != regime.Invested {
		return st
	}
	for _, p := range held {
		if !p.Open() {
			continue
		}
		if _, ok := st.SectorStocks.SectorOf(p.Symbol); ok {
			continue
		}
		row, ok := universe.Lookup(p.Symbol)
		if !ok {
			continue
		}
		st.SectorStocks.Add(risk.SectorOrUnclassified(row.Sector), p.Symbol)
	}
	return st
}
