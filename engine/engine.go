// Package engine runs the rebalancing cycle: regime switching, stop-loss and
// profit exits, and buying ranked candidates under sector and position caps.
//
// An Engine is driven by one scheduler goroutine and does no locking.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/rebalancer/fundamentals"
	"github.com/rustyeddy/rebalancer/hedge"
	"github.com/rustyeddy/rebalancer/journal"
	"github.com/rustyeddy/rebalancer/market"
	"github.com/rustyeddy/rebalancer/metrics"
	"github.com/rustyeddy/rebalancer/pkg/id"
	"github.com/rustyeddy/rebalancer/regime"
	"github.com/rustyeddy/rebalancer/risk"
	"github.com/rustyeddy/rebalancer/screener"
)

type Options struct {
	Policy    risk.Policy
	Detector  regime.Detector
	Screener  screener.Screener
	Liquidity risk.Liquidity

	// Hedge is bought on entering the defensive regime. Nil means the
	// portfolio is only liquidated.
	Hedge hedge.Source

	History   market.History
	Portfolio market.PortfolioSource
	Executor  market.Executor

	// Optional.
	Store   Store
	Journal journal.Journal
	Metrics *metrics.Metrics
	Logger  *zerolog.Logger
	Clock   func() time.Time
}

type Engine struct {
	opts  Options
	sizer risk.Sizer
	log   zerolog.Logger
	now   func() time.Time

	state State
	ran   bool
}

func New(opts Options) (*Engine, error) {
	if opts.History == nil {
		return nil, errors.New("engine: History is required")
	}
	if opts.Portfolio == nil {
		return nil, errors.New("engine: Portfolio is required")
	}
	if opts.Executor == nil {
		return nil, errors.New("engine: Executor is required")
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("engine: policy: %w", err)
	}
	if err := opts.Liquidity.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if err := opts.Screener.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if opts.Detector.Period < 0 {
		return nil, errors.New("engine: detector period must not be negative")
	}

	e := &Engine{
		opts:  opts,
		sizer: risk.NewSizer(opts.Policy),
		log:   zerolog.Nop(),
		now:   time.Now,
		state: NewState(),
	}
	if opts.Logger != nil {
		e.log = opts.Logger.With().Str("component", "engine").Logger()
	}
	if opts.Clock != nil {
		e.now = opts.Clock
	}
	if e.opts.Journal == nil {
		e.opts.Journal = journal.Discard{}
	}
	return e, nil
}

// State returns a copy of the engine state.
func (e *Engine) State() State {
	return e.state.Clone()
}

// SetState replaces the engine state, keeping the turnover counter.
func (e *Engine) SetState(s State) {
	s = s.Clone()
	s.normalize()
	s.Turnover = e.state.Turnover
	e.state = s
}

// Turnover is the number of orders placed since the engine was created.
func (e *Engine) Turnover() int {
	return e.state.Turnover
}

// StartSession opens a new trading session, allowing one more cycle.
func (e *Engine) StartSession(day time.Time) {
	e.ran = false
	e.log.Debug().Time("session", market.Day(day)).Msg("session start")
}

// Ran reports whether the cycle already ran in the current session.
func (e *Engine) Ran() bool {
	return e.ran
}

// Load restores persisted state. Any failure leaves the engine with empty
// state; the error is returned for reporting only.
func (e *Engine) Load(ctx context.Context) error {
	if e.opts.Store == nil {
		return nil
	}
	s, err := e.opts.Store.Load(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("state load failed, starting empty")
		e.opts.Metrics.CycleError("state_load")
		e.SetState(NewState())
		return fmt.Errorf("engine: load state: %w", err)
	}
	e.SetState(s)
	e.log.Info().
		Str("regime", e.state.Regime.String()).
		Int("stoploss", e.state.Ledger.Len()).
		Int("sectors", len(e.state.SectorStocks)).
		Msg("state loaded")
	return nil
}

// Save persists the current state. Failures are logged and returned; they
// never affect trading.
func (e *Engine) Save(ctx context.Context) error {
	if e.opts.Store == nil {
		return nil
	}
	if err := e.opts.Store.Save(ctx, e.state.Clone()); err != nil {
		e.log.Error().Err(err).Msg("state save failed")
		e.opts.Metrics.CycleError("state_save")
		return fmt.Errorf("engine: save state: %w", err)
	}
	return nil
}

// RunCycle runs the rebalancing logic once for the trading day asOf. A
// second call in the same session is a no-op reported as Skipped.
//
// Only a failure to read the portfolio before any decision is returned as an
// error; everything else is recovered from and listed in Report.Errors.
func (e *Engine) RunCycle(ctx context.Context, asOf time.Time, benchmark market.ReturnSeries, universe fundamentals.Universe) (Report, error) {
	if e.ran {
		e.log.Debug().Time("as_of", asOf).Msg("cycle already ran this session")
		return Report{AsOf: asOf, Skipped: true, Regime: e.state.Regime}, nil
	}

	pf, err := e.opts.Portfolio.Snapshot(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("engine: portfolio snapshot: %w", err)
	}

	start := e.now()
	c := &cycle{
		Engine:   e,
		ctx:      ctx,
		asOf:     asOf,
		universe: universe,
		report: Report{
			AsOf:    asOf,
			CycleID: id.NewAt(asOf),
		},
	}
	c.log = e.log.With().Str("cycle", c.report.CycleID).Logger()
	c.run(pf, benchmark)
	e.ran = true

	c.report.Regime = e.state.Regime
	c.snapshot()

	e.opts.Metrics.Regime(e.state.Regime == regime.Defensive)
	e.opts.Metrics.TrendSignal(c.report.Signal)
	e.opts.Metrics.LedgerSize(e.state.Ledger.Len())
	e.opts.Metrics.Exposure(e.state.Exposure)
	e.opts.Metrics.CycleDuration(e.now().Sub(start))

	c.log.Info().
		Str("regime", e.state.Regime.String()).
		Int("orders", len(c.report.Orders)).
		Int("errors", len(c.report.Errors)).
		Int("turnover", e.state.Turnover).
		Msg("cycle done")
	return c.report, nil
}
