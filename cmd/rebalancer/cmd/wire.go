package cmd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rustyeddy/rebalancer/config"
	"github.com/rustyeddy/rebalancer/engine"
	"github.com/rustyeddy/rebalancer/hedge"
	"github.com/rustyeddy/rebalancer/journal"
	"github.com/rustyeddy/rebalancer/market"
	"github.com/rustyeddy/rebalancer/metrics"
)

// closers collects cleanup funcs, run in reverse order.
type closers []func() error

func (c *closers) add(f func() error) { *c = append(*c, f) }

func (c closers) Close() {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			logger.Warn().Err(err).Msg("close")
		}
	}
}

func openStore(cfg *config.Config, cl *closers) (engine.Store, error) {
	if cfg.State.Type == "none" {
		return nil, nil
	}
	store, closeFn, err := openStateStore(cfg)
	if err != nil {
		return nil, err
	}
	cl.add(closeFn)
	return store, nil
}

func openJournal(cfg *config.Config, cl *closers) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		j, err := journal.NewCSV(cfg.Journal.OrdersFile, cfg.Journal.PositionsFile)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		cl.add(j.Close)
		return j, nil
	case "sqlite":
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		cl.add(j.Close)
		return j, nil
	}
	return journal.Discard{}, nil
}

func openHedge(cfg *config.Config, cl *closers) (hedge.Source, error) {
	if !cfg.Hedge.Enabled {
		return nil, nil
	}
	if cfg.Hedge.Source == "sqlite" {
		src, err := hedge.NewSQLiteSource(cfg.Hedge.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open hedge source: %w", err)
		}
		cl.add(src.Close)
		return src, nil
	}
	return hedge.Static(cfg.Hedge.Allocations), nil
}

// session is an engine and everything it was built from.
type session struct {
	Engine   *engine.Engine
	Registry *prometheus.Registry
	closers
}

// newSession builds an engine from cfg over the given market collaborators.
func newSession(cfg *config.Config, history market.History, pf market.PortfolioSource, exec market.Executor) (*session, error) {
	s := &session{Registry: prometheus.NewRegistry()}

	m, err := metrics.New(s.Registry)
	if err != nil {
		return nil, err
	}
	store, err := openStore(cfg, &s.closers)
	if err != nil {
		s.Close()
		return nil, err
	}
	j, err := openJournal(cfg, &s.closers)
	if err != nil {
		s.Close()
		return nil, err
	}
	h, err := openHedge(cfg, &s.closers)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.Engine, err = engine.New(engine.Options{
		Policy:    cfg.Policy(),
		Detector:  cfg.Detector(),
		Screener:  cfg.Screener(),
		Liquidity: cfg.LiquidityCheck(),
		Hedge:     h,
		History:   history,
		Portfolio: pf,
		Executor:  exec,
		Store:     store,
		Journal:   j,
		Metrics:   m,
		Logger:    &logger,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// writeMetrics dumps the session's registry for the node exporter textfile
// collector. An empty path is a no-op.
func (s *session) writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, s.Registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
