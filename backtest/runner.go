// Package backtest replays the rebalancing engine over a daily CSV dataset
// against a paper portfolio.
package backtest

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/rebalancer/engine"
	"github.com/rustyeddy/rebalancer/fundamentals"
	"github.com/rustyeddy/rebalancer/market"
	"github.com/rustyeddy/rebalancer/pkg/id"
	"github.com/rustyeddy/rebalancer/sim"
)

// Runner drives an engine day by day over a dataset. The engine must have
// been built with Sim as both its portfolio and its executor and Bars as its
// history.
type Runner struct {
	Engine    *engine.Engine
	Sim       *sim.Portfolio
	Bars      *Bars
	Benchmark market.ReturnSeries
	Universe  fundamentals.Universe
	Schedule  Schedule

	// Optional [From, To) window.
	From time.Time
	To   time.Time

	Logger *zerolog.Logger
}

// Run executes the backtest loop. For every trading day:
//  1. mark the paper portfolio to that day's closes
//  2. open a new session
//  3. on scheduled days, run one engine cycle
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.Engine == nil {
		return Result{}, errors.New("backtest: Engine is required")
	}
	if r.Sim == nil {
		return Result{}, errors.New("backtest: Sim is required")
	}
	if r.Bars == nil {
		return Result{}, errors.New("backtest: Bars is required")
	}
	schedule := r.Schedule
	if schedule == "" {
		schedule = Daily
	}
	log := zerolog.Nop()
	if r.Logger != nil {
		log = r.Logger.With().Str("component", "backtest").Logger()
	}

	var days []time.Time
	for _, d := range r.Bars.Dates() {
		if inRange(d, r.From, r.To) {
			days = append(days, d)
		}
	}
	due := make(map[time.Time]bool)
	for _, d := range schedule.Days(days) {
		due[d] = true
	}

	res := Result{
		RunID:          id.New(),
		OrdersByReason: make(map[string]int),
		TradingDays:    len(days),
	}
	if len(days) == 0 {
		res.StartValue = r.Sim.Value()
		res.EndValue = res.StartValue
		return res, nil
	}
	res.Start, res.End = days[0], days[len(days)-1]

	turnover := r.Engine.Turnover()
	peak := 0.0
	for i, d := range days {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		r.Sim.MarkToMarket(ctx, d)
		if i == 0 {
			res.StartValue = r.Sim.Value()
		}
		r.Engine.StartSession(d)

		if due[d] {
			rep, err := r.Engine.RunCycle(ctx, d, r.Benchmark, r.Universe)
			if err != nil {
				return res, err
			}
			res.Cycles++
			res.Errors += len(rep.Errors)
			if rep.Transition != engine.NoTransition {
				res.Transitions++
			}
			for _, o := range rep.Orders {
				res.OrdersByReason[string(o.Reason)]++
			}
			if len(rep.Orders) > 0 {
				log.Debug().Time("day", d).Int("orders", len(rep.Orders)).Msg("rebalanced")
			}
		}

		v := r.Sim.Value()
		peak = math.Max(peak, v)
		if peak > 0 {
			res.MaxDrawdownPct = math.Max(res.MaxDrawdownPct, 100*(peak-v)/peak)
		}
	}

	res.EndValue = r.Sim.Value()
	if res.StartValue > 0 {
		res.ReturnPct = 100 * (res.EndValue/res.StartValue - 1)
	}
	res.RealizedPL = r.Sim.RealizedPL()
	res.Turnover = r.Engine.Turnover() - turnover
	res.FinalRegime = r.Engine.State().Regime

	log.Info().
		Str("run", res.RunID).
		Int("cycles", res.Cycles).
		Int("turnover", res.Turnover).
		Float64("return_pct", res.ReturnPct).
		Msg("backtest done")
	return res, nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
