// Package metrics exposes rebalancing activity as Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rebalancer"

// Metrics holds the engine's collectors. A nil *Metrics records nothing.
type Metrics struct {
	turnover     *prometheus.CounterVec
	ordersFailed *prometheus.CounterVec
	cycleErrors  *prometheus.CounterVec
	regime       prometheus.Gauge
	trendSignal  prometheus.Gauge
	ledgerSize   prometheus.Gauge
	exposure     *prometheus.GaugeVec
	cycleSeconds prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		turnover: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turnover_total",
			Help:      "Orders issued, by reason",
		}, []string{"reason"}),
		ordersFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_failed_total",
			Help:      "Orders rejected by the executor, by reason",
		}, []string{"reason"}),
		cycleErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_errors_total",
			Help:      "Recoverable errors seen during a cycle, by kind",
		}, []string{"kind"}),
		regime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regime",
			Help:      "Current regime (0 invested, 1 defensive)",
		}),
		trendSignal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trend_signal",
			Help:      "Cumulative benchmark return over the trend period, in percent",
		}),
		ledgerSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stoploss_ledger_size",
			Help:      "Assets currently in stop-loss cooldown",
		}),
		exposure: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sector_exposure",
			Help:      "Fraction of portfolio value held per sector",
		}, []string{"sector"}),
		cycleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one rebalancing cycle",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{
		m.turnover, m.ordersFailed, m.cycleErrors, m.regime,
		m.trendSignal, m.ledgerSize, m.exposure, m.cycleSeconds,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Order(reason string) {
	if m == nil {
		return
	}
	m.turnover.WithLabelValues(reason).Inc()
}

func (m *Metrics) OrderFailed(reason string) {
	if m == nil {
		return
	}
	m.ordersFailed.WithLabelValues(reason).Inc()
}

func (m *Metrics) CycleError(kind string) {
	if m == nil {
		return
	}
	m.cycleErrors.WithLabelValues(kind).Inc()
}

// Regime records the regime; defensive is 1.
func (m *Metrics) Regime(defensive bool) {
	if m == nil {
		return
	}
	v := 0.0
	if defensive {
		v = 1
	}
	m.regime.Set(v)
}

func (m *Metrics) TrendSignal(v float64) {
	if m == nil {
		return
	}
	m.trendSignal.Set(v)
}

func (m *Metrics) LedgerSize(n int) {
	if m == nil {
		return
	}
	m.ledgerSize.Set(float64(n))
}

// Exposure replaces the per-sector gauges with the given map.
func (m *Metrics) Exposure(bySector map[string]float64) {
	if m == nil {
		return
	}
	m.exposure.Reset()
	for sector, v := range bySector {
		m.exposure.WithLabelValues(sector).Set(v)
	}
}

func (m *Metrics) CycleDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.cycleSeconds.Observe(d.Seconds())
}
