package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/rebalancer/backtest"
	"github.com/rustyeddy/rebalancer/fundamentals"
	"github.com/rustyeddy/rebalancer/sim"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay the strategy over historical daily data",
	Long: `Backtest runs one rebalancing cycle per scheduled trading day against a paper
portfolio that fills at the day's close.

Inputs:
  --bars          date,symbol,close,volume
  --benchmark     date,return (daily simple returns)
  --fundamentals  symbol,sector,<metric>...

Example:
  rebalancer backtest --bars data/bars.csv --benchmark data/spx.csv \
    --fundamentals data/fundamentals.csv --from 2020-01-01 --report backtest.org`,
	RunE: runBacktest,
}

var (
	btBarsPath         string
	btBenchmarkPath    string
	btFundamentalsPath string
	btFrom             string
	btTo               string
	btCash             float64
	btReportPath       string
	btMetricsPath      string
	btKeepState        bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btBarsPath, "bars", "b", "", "daily bars CSV (required)")
	backtestCmd.Flags().StringVar(&btBenchmarkPath, "benchmark", "", "benchmark returns CSV (required)")
	backtestCmd.Flags().StringVarP(&btFundamentalsPath, "fundamentals", "u", "", "fundamentals CSV (required)")
	backtestCmd.Flags().StringVar(&btFrom, "from", "", "first day, YYYY-MM-DD")
	backtestCmd.Flags().StringVar(&btTo, "to", "", "day after the last, YYYY-MM-DD")
	backtestCmd.Flags().Float64Var(&btCash, "cash", 0, "starting cash (default account.cash)")
	backtestCmd.Flags().StringVarP(&btReportPath, "report", "r", "", "write an Org report to this path")
	backtestCmd.Flags().StringVar(&btMetricsPath, "metrics-file", "", "write Prometheus metrics to this path")
	backtestCmd.Flags().BoolVar(&btKeepState, "keep-state", false, "load and save engine state through the configured store")

	backtestCmd.MarkFlagRequired("bars")
	backtestCmd.MarkFlagRequired("benchmark")
	backtestCmd.MarkFlagRequired("fundamentals")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !btKeepState {
		cfg.State.Type = "none"
	}
	if btCash > 0 {
		cfg.Account.Cash = btCash
	}

	from, err := optionalDate(btFrom)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := optionalDate(btTo)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}
	schedule, err := backtest.ParseSchedule(cfg.Strategy.Schedule)
	if err != nil {
		return err
	}

	bars, err := backtest.LoadBars(btBarsPath)
	if err != nil {
		return fmt.Errorf("bars: %w", err)
	}
	bench, err := backtest.LoadBenchmark(btBenchmarkPath)
	if err != nil {
		return fmt.Errorf("benchmark: %w", err)
	}
	universe, err := fundamentals.LoadCSV(btFundamentalsPath)
	if err != nil {
		return fmt.Errorf("fundamentals: %w", err)
	}

	paper := sim.New(bars, cfg.Account.Cash)
	s, err := newSession(cfg, bars, paper, paper)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	if btKeepState {
		_ = s.Engine.Load(ctx)
	}

	logger.Info().
		Str("bars", btBarsPath).
		Int("symbols", len(bars.Symbols())).
		Int("universe", len(universe)).
		Str("schedule", string(schedule)).
		Msg("backtest start")

	runner := &backtest.Runner{
		Engine:    s.Engine,
		Sim:       paper,
		Bars:      bars,
		Benchmark: bench,
		Universe:  universe,
		Schedule:  schedule,
		From:      from,
		To:        to,
		Logger:    &logger,
	}
	res, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}
	if btKeepState {
		_ = s.Engine.Save(ctx)
	}

	backtest.PrintResult(cmd.OutOrStdout(), res)

	if btReportPath != "" {
		raw, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		rep := backtest.Report{
			Result:    res,
			Created:   time.Now(),
			Dataset:   btBarsPath,
			Benchmark: btBenchmarkPath,
			Schedule:  schedule,
			Config:    raw,
		}
		if err := rep.WriteOrg(btReportPath); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", btReportPath)
	}
	return s.writeMetrics(btMetricsPath)
}

func optionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}
