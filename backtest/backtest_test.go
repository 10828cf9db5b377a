package backtest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/rebalancer/engine"
	"github.com/rustyeddy/rebalancer/fundamentals"
	"github.com/rustyeddy/rebalancer/market"
	"github.com/rustyeddy/rebalancer/regime"
	"github.com/rustyeddy/rebalancer/risk"
	"github.com/rustyeddy/rebalancer/sim"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestReadBars(t *testing.T) {
	t.Parallel()

	in := `date,symbol,close,volume
2024-01-03,AAA,11,100
2024-01-02,AAA,10,200

2024-01-02,BBB,20,300
`
	bars, err := ReadBars(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, bars.Symbols())
	assert.Equal(t, []time.Time{date("2024-01-02"), date("2024-01-03")}, bars.Dates())

	ctx := context.Background()
	closes, err := bars.Closes(ctx, "AAA", 2, date("2024-01-03").Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11}, closes)

	vols, err := bars.Volumes(ctx, "AAA", 1, date("2024-01-02"))
	require.NoError(t, err)
	assert.Equal(t, []float64{200}, vols)

	_, err = bars.Closes(ctx, "AAA", 3, date("2024-01-03"))
	assert.ErrorIs(t, err, market.ErrNoData)
	_, err = bars.Closes(ctx, "BBB", 1, date("2024-01-01"))
	assert.ErrorIs(t, err, market.ErrNoData)

	rets := bars.Returns("AAA")
	require.Len(t, rets, 1)
	assert.InDelta(t, 0.1, rets[0].Return, 1e-12)
}

func TestReadBarsErrors(t *testing.T) {
	t.Parallel()

	for name, in := range map[string]string{
		"short row":  "2024-01-02,AAA,10\n",
		"bad date":   "01/02/2024,AAA,10,1\n",
		"bad close":  "2024-01-02,AAA,x,1\n",
		"bad volume": "2024-01-02,AAA,10,y\n",
	} {
		_, err := ReadBars(strings.NewReader(in))
		assert.Error(t, err, name)
	}
}

func TestReadBenchmark(t *testing.T) {
	t.Parallel()

	in := "date,return\n2024-01-03,-0.01\n2024-01-02,0.02\n"
	series, err := ReadBenchmark(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, date("2024-01-02"), series[0].Date)
	assert.InDelta(t, 0.02, series[0].Return, 0)

	_, err = ReadBenchmark(strings.NewReader("2024-01-02,abc\n"))
	assert.Error(t, err)
}

func TestSchedule(t *testing.T) {
	t.Parallel()

	days := []time.Time{date("2024-01-30"), date("2024-01-31"), date("2024-02-01"), date("2024-02-02"), date("2025-02-03")}

	assert.Equal(t, days, Daily.Days(days))
	assert.Equal(t, []time.Time{date("2024-01-30"), date("2024-02-01"), date("2025-02-03")}, MonthStart.Days(days))

	s, err := ParseSchedule("Month_Start")
	require.NoError(t, err)
	assert.Equal(t, MonthStart, s)
	s, err = ParseSchedule("")
	require.NoError(t, err)
	assert.Equal(t, Daily, s)
	_, err = ParseSchedule("weekly")
	assert.Error(t, err)
}

func newRun(t *testing.T) (*Runner, *sim.Portfolio) {
	t.Helper()

	var b strings.Builder
	b.WriteString("date,symbol,close,volume\n")
	aaa := []float64{10, 10, 10, 9.5, 9.5, 9.5}
	for i, px := range aaa {
		d := date("2024-03-04").AddDate(0, 0, i)
		fmt.Fprintf(&b, "%s,AAA,%g,1000000\n", d.Format(time.DateOnly), px)
		fmt.Fprintf(&b, "%s,BBB,20,1000000\n", d.Format(time.DateOnly))
	}
	bars, err := ReadBars(strings.NewReader(b.String()))
	require.NoError(t, err)

	var bench market.ReturnSeries
	for _, d := range bars.Dates() {
		bench = append(bench, market.DailyReturn{Date: d, Return: 0.001})
	}

	paper := sim.New(bars, 10_000)
	eng, err := engine.New(engine.Options{
		Policy:    risk.DefaultPolicy(),
		Detector:  regime.Detector{Period: 3},
		Liquidity: risk.Liquidity{Lookback: 2, MinDollarVolume: 10_000, MinAvgDollarVolume: 20_000},
		History:   bars,
		Portfolio: paper,
		Executor:  paper,
	})
	require.NoError(t, err)

	return &Runner{
		Engine:    eng,
		Sim:       paper,
		Bars:      bars,
		Benchmark: bench,
		Universe: fundamentals.Universe{
			{Symbol: "AAA", Sector: "Technology", Metrics: map[string]float64{fundamentals.QoQEarnings: 2}},
			{Symbol: "BBB", Sector: "Energy", Metrics: map[string]float64{fundamentals.QoQEarnings: 1}},
		},
	}, paper
}

func TestRunnerDaily(t *testing.T) {
	t.Parallel()

	r, paper := newRun(t)
	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, res.TradingDays)
	assert.Equal(t, 6, res.Cycles)
	assert.Equal(t, 3, res.Turnover)
	assert.Equal(t, map[string]int{"BUY": 2, "STOP_LOSS": 1}, res.OrdersByReason)
	assert.InDelta(t, 10_000, res.StartValue, 1e-9)
	assert.InDelta(t, 9_965, res.EndValue, 1e-9)
	assert.InDelta(t, -0.35, res.ReturnPct, 1e-9)
	assert.InDelta(t, 0.35, res.MaxDrawdownPct, 1e-9)
	assert.InDelta(t, -35, res.RealizedPL, 1e-9)
	assert.Equal(t, regime.Invested, res.FinalRegime)

	assert.True(t, r.Engine.State().Ledger.Contains("AAA"))
	snap, err := paper.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BBB"}, snap.Held())
}

func TestRunnerWindowAndValidation(t *testing.T) {
	t.Parallel()

	r, _ := newRun(t)
	r.From = date("2024-03-05")
	r.To = date("2024-03-07")
	r.Schedule = MonthStart
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.TradingDays)
	assert.Equal(t, 1, res.Cycles)
	assert.Equal(t, date("2024-03-05"), res.Start)

	_, err = (&Runner{}).Run(context.Background())
	assert.ErrorContains(t, err, "Engine is required")
}

func TestReportOrg(t *testing.T) {
	t.Parallel()

	rep := Report{
		Result: Result{
			RunID:          "RUN1",
			Start:          date("2024-01-02"),
			End:            date("2024-12-31"),
			StartValue:     10_000,
			EndValue:       11_000,
			ReturnPct:      10,
			Turnover:       3,
			OrdersByReason: map[string]int{"BUY": 2, "STOP_LOSS": 1},
			FinalRegime:    regime.Defensive,
		},
		Dataset:  "bars.csv",
		Schedule: MonthStart,
		Config:   []byte("strategy: {}"),
		Notes:    []string{"first run"},
	}

	out, err := rep.Org()
	require.NoError(t, err)
	assert.Contains(t, out, "* BACKTEST: rebalance bars.csv")
	assert.Contains(t, out, ":RUN_ID:      RUN1")
	assert.Contains(t, out, ":RETURN_PCT:  10.00")
	assert.Contains(t, out, ":REGIME:      DEFENSIVE")
	assert.Contains(t, out, "| BUY | 2 |")
	assert.Contains(t, out, "| STOP_LOSS | 1 |")
	assert.Contains(t, out, "strategy: {}")
	assert.Contains(t, out, "- first run")

	path := filepath.Join(t.TempDir(), "run.org")
	require.NoError(t, rep.WriteOrg(path))

	var sb strings.Builder
	PrintResult(&sb, rep.Result)
	assert.Contains(t, sb.String(), "Return:        10.00%")
	assert.Contains(t, sb.String(), "STOP_LOSS")
}
