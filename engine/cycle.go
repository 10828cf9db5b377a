package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/rebalancer/fundamentals"
	"github.com/rustyeddy/rebalancer/market"
	"github.com/rustyeddy/rebalancer/regime"
	"github.com/rustyeddy/rebalancer/risk"
)

// cycle is the working set of one RunCycle call.
type cycle struct {
	*Engine

	ctx      context.Context
	asOf     time.Time
	universe fundamentals.Universe
	log      zerolog.Logger
	report   Report
}

func (c *cycle) run(pf market.Portfolio, benchmark market.ReturnSeries) {
	c.state.Ledger.Tick()

	signal := c.opts.Detector.Signal(benchmark, c.asOf)
	c.report.Signal = signal
	current := c.state.Regime
	next := c.opts.Detector.Next(current, signal)

	c.log.Info().
		Time("as_of", c.asOf).
		Float64("signal", signal).
		Str("regime", current.String()).
		Msg("cycle start")

	switch {
	case current == regime.Invested && next == regime.Defensive:
		c.report.Transition = ToDefensive
		c.enterDefensive(pf)
		c.state.Regime = regime.Defensive
		return

	case current == regime.Defensive && next == regime.Defensive:
		return

	case current == regime.Defensive && next == regime.Invested:
		c.report.Transition = ToInvested
		c.exitDefensive(pf)
		c.state.Regime = regime.Invested

		var err error
		if pf, err = c.opts.Portfolio.Snapshot(c.ctx); err != nil {
			c.fail("portfolio", fmt.Errorf("portfolio snapshot: %w", err))
			return
		}
	}

	c.invested(pf)
}

// enterDefensive flattens every open position and buys the hedge basket.
func (c *cycle) enterDefensive(pf market.Portfolio) {
	c.log.Warn().Float64("signal", c.report.Signal).Msg("trend negative, going defensive")

	for _, sym := range pf.Held() {
		pos := pf.Positions[sym]
		c.place(market.Order{Symbol: sym, Target: 0, Reason: market.ReasonFlatten}, pos.Quantity, c.lastPrice(pos))
	}
	c.state.SectorStocks = make(risk.SectorStocks)
	c.state.Exposure = make(risk.Exposure)

	if c.opts.Hedge == nil {
		return
	}
	allocs, err := c.opts.Hedge.Allocations(c.ctx)
	if err != nil {
		c.fail("hedge", fmt.Errorf("hedge allocations: %w", err))
		return
	}
	if err := allocs.Validate(); err != nil {
		c.fail("hedge", err)
		return
	}

	after, err := c.opts.Portfolio.Snapshot(c.ctx)
	if err != nil {
		c.fail("portfolio", fmt.Errorf("portfolio snapshot: %w", err))
		return
	}
	for _, a := range allocs {
		if a.Share <= 0 {
			continue
		}
		price, err := market.LastClose(c.ctx, c.opts.History, a.Symbol, c.asOf)
		if err != nil || !(price > 0) {
			c.fail("data_unavailable", fmt.Errorf("hedge %s: no usable price: %w", a.Symbol, orNoData(err)))
			continue
		}
		qty := math.Floor(a.Share / 100 * after.Value / price)
		if qty <= 0 {
			continue
		}
		prev := after.Positions[a.Symbol].Quantity
		c.place(market.Order{Symbol: a.Symbol, Target: prev + qty, Reason: market.ReasonHedgeBuy}, prev, price)
	}
}

// exitDefensive liquidates the held hedge instruments. Any other holding
// is left to the invested pass.
func (c *cycle) exitDefensive(pf market.Portfolio) {
	c.log.Info().Float64("signal", c.report.Signal).Msg("trend recovered, reinvesting")

	if c.opts.Hedge == nil {
		return
	}
	allocs, err := c.opts.Hedge.Allocations(c.ctx)
	if err != nil {
		c.fail("hedge", fmt.Errorf("hedge allocations: %w", err))
		return
	}
	for _, sym := range pf.Held() {
		if !allocs.Contains(sym) {
			continue
		}
		pos := pf.Positions[sym]
		c.place(market.Order{Symbol: sym, Target: 0, Reason: market.ReasonHedgeExit}, pos.Quantity, c.lastPrice(pos))
	}
}

func (c *cycle) invested(pf market.Portfolio) {
	c.exits(pf)

	after, err := c.opts.Portfolio.Snapshot(c.ctx)
	if err != nil {
		c.fail("portfolio", fmt.Errorf("portfolio snapshot: %w", err))
		return
	}
	c.state.Exposure = risk.Recompute(c.priced(after), c.state.SectorStocks, after.Value)

	c.buys(after)
}

// exits evaluates every open position first and only then acts, so an
// invalid price anywhere leaves every position untouched.
func (c *cycle) exits(pf market.Portfolio) {
	held := pf.Held()
	evals := make([]Evaluation, 0, len(held))
	for _, sym := range held {
		ev, err := c.evaluate(pf.Positions[sym], pf.Value)
		if err != nil {
			c.fail("invalid_price", err)
			c.log.Error().Err(err).Msg("stop-loss pass aborted")
			return
		}
		evals = append(evals, ev)
	}

	for _, ev := range evals {
		c.report.Outcomes = append(c.report.Outcomes, ev)
		pos := pf.Positions[ev.Symbol]

		switch ev.Outcome {
		case StopLossExit:
			o := market.Order{Symbol: ev.Symbol, Target: ev.Target, Reason: market.ReasonStopLoss}
			if !c.place(o, pos.Quantity, ev.Price) {
				continue
			}
			sector, _ := c.state.SectorStocks.Remove(ev.Symbol)
			c.state.Ledger.Add(ev.Symbol, c.opts.Policy.CooldownDays)
			c.log.Info().
				Str("symbol", ev.Symbol).
				Str("sector", sector).
				Float64("gain", ev.Gain).
				Int("cooldown", c.opts.Policy.CooldownDays).
				Msg("stop-loss exit")

		case ProfitBook:
			o := market.Order{Symbol: ev.Symbol, Target: ev.Target, Reason: market.ReasonProfitBook}
			if !c.place(o, pos.Quantity, ev.Price) {
				continue
			}
			c.log.Info().
				Str("symbol", ev.Symbol).
				Float64("gain", ev.Gain).
				Float64("exposure", ev.Exposure).
				Msg("profit booked")

		case DataUnavailable:
			c.log.Warn().Str("symbol", ev.Symbol).Msg("no price for held position")
		}
	}
}

// evaluate decides what to do with one open position. The only error is
// ErrInvalidPrice.
func (c *cycle) evaluate(pos market.Position, value float64) (Evaluation, error) {
	ev := Evaluation{Symbol: pos.Symbol, Outcome: Hold}

	price := pos.LastPrice
	if price == 0 {
		var err error
		price, err = market.LastClose(c.ctx, c.opts.History, pos.Symbol, c.asOf)
		if err != nil {
			ev.Outcome = DataUnavailable
			return ev, nil
		}
	}
	if !(price > 0) {
		return ev, fmt.Errorf("%w: %s at %.4f", ErrInvalidPrice, pos.Symbol, price)
	}

	ev.Price = price
	ev.Gain = risk.GainPct(price, pos.CostBasis)
	ev.Exposure = risk.ExposureOf(pos.Quantity, price, value)

	switch {
	case ev.Gain <= c.opts.Policy.StopLossPct:
		ev.Outcome = StopLossExit
		ev.Target = 0
	case ev.Exposure > c.opts.Policy.ProfitBookExposure && ev.Gain > 0:
		ev.Outcome = ProfitBook
		ev.Target = math.Floor(pos.Quantity / 2)
	}
	return ev, nil
}

// buys walks the ranked candidates until the position cap is reached.
func (c *cycle) buys(pf market.Portfolio) {
	held := make(map[string]bool)
	for _, sym := range pf.Held() {
		held[sym] = true
	}
	limit := c.opts.Policy.MaxPositions
	if len(held) >= limit {
		c.log.Debug().Int("held", len(held)).Msg("position cap reached, no buys")
		return
	}

	cash := pf.Cash
	ranked := c.opts.Screener.Screen(c.universe, c.asOf.Year())
	c.log.Debug().Int("candidates", ranked.Len()).Msg("screened")

	for _, cand := range ranked.All() {
		if len(held) >= limit {
			break
		}
		sym := cand.Symbol()
		if held[sym] || c.state.Ledger.Contains(sym) {
			continue
		}

		price, volumes, err := c.marketData(sym)
		if err != nil {
			c.report.Outcomes = append(c.report.Outcomes, Evaluation{Symbol: sym, Outcome: DataUnavailable})
			c.log.Debug().Err(err).Str("symbol", sym).Msg("skip candidate")
			continue
		}
		if d := c.opts.Liquidity.Check(price, volumes); !d.Allowed {
			c.log.Debug().Str("symbol", sym).Interface("violations", d.Violations).Msg("illiquid")
			continue
		}

		sector := risk.SectorOrUnclassified(cand.Sector())
		prevExposure, hadSector := c.state.Exposure[sector]
		alloc := c.sizer.Size(sector, price, cash, pf.Value, c.state.Exposure)
		if alloc.Quantity <= 0 {
			continue
		}

		if !c.place(market.Order{Symbol: sym, Target: alloc.Quantity, Reason: market.ReasonBuy}, 0, price) {
			if hadSector {
				c.state.Exposure[sector] = prevExposure
			} else {
				delete(c.state.Exposure, sector)
			}
			continue
		}
		cash -= alloc.Quantity * price
		c.state.SectorStocks.Add(sector, sym)
		held[sym] = true
		c.log.Info().
			Str("symbol", sym).
			Str("sector", sector).
			Float64("qty", alloc.Quantity).
			Float64("exposure", alloc.Exposure).
			Msg("buy")
	}
}

func (c *cycle) marketData(sym string) (float64, []float64, error) {
	price, err := market.LastClose(c.ctx, c.opts.History, sym, c.asOf)
	if err != nil {
		return 0, nil, err
	}
	volumes, err := c.opts.History.Volumes(c.ctx, sym, c.opts.Liquidity.Lookback, c.asOf)
	if err != nil {
		return 0, nil, err
	}
	return price, volumes, nil
}

// place sends o to the executor and does the bookkeeping every accepted
// order shares. It reports whether the order was accepted.
func (c *cycle) place(o market.Order, previous, price float64) bool {
	if err := c.opts.Executor.OrderTarget(c.ctx, o); err != nil {
		oerr := &OrderError{Order: o, Err: err}
		c.report.Errors = append(c.report.Errors, oerr)
		c.opts.Metrics.OrderFailed(string(o.Reason))
		c.log.Error().Err(err).Str("symbol", o.Symbol).Str("reason", string(o.Reason)).Msg("order failed")
		return false
	}

	c.report.Orders = append(c.report.Orders, o)
	c.report.Turnover++
	c.state.Turnover++
	c.opts.Metrics.Order(string(o.Reason))
	c.recordOrder(o, previous, price)
	return true
}

// fail records a recoverable error.
func (c *cycle) fail(kind string, err error) {
	c.report.Errors = append(c.report.Errors, err)
	c.opts.Metrics.CycleError(kind)
	c.log.Warn().Err(err).Str("kind", kind).Msg("cycle error")
}

// lastPrice is the best known price of pos, 0 when there is none.
func (c *cycle) lastPrice(pos market.Position) float64 {
	if pos.LastPrice > 0 {
		return pos.LastPrice
	}
	price, err := market.LastClose(c.ctx, c.opts.History, pos.Symbol, c.asOf)
	if err != nil {
		return 0
	}
	return price
}

// priced returns the open positions with LastPrice resolved from history
// where no trade has printed.
func (c *cycle) priced(pf market.Portfolio) map[string]market.Position {
	out := make(map[string]market.Position, len(pf.Positions))
	for sym, pos := range pf.Positions {
		if !pos.Open() {
			continue
		}
		pos.LastPrice = c.lastPrice(pos)
		out[sym] = pos
	}
	return out
}

func orNoData(err error) error {
	if err == nil {
		return market.ErrNoData
	}
	return err
}
