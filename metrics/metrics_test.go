package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.Order("BUY")
	m.Order("BUY")
	m.Order("STOP_LOSS")
	m.OrderFailed("BUY")
	m.CycleError("invalid_price")
	m.Regime(true)
	m.TrendSignal(-2.5)
	m.LedgerSize(3)
	m.Exposure(map[string]float64{"Technology": 0.2, "Energy": 0.05})
	m.Exposure(map[string]float64{"Technology": 0.25})
	m.CycleDuration(150 * time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.turnover.WithLabelValues("BUY")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.turnover.WithLabelValues("STOP_LOSS")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ordersFailed.WithLabelValues("BUY")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.cycleErrors.WithLabelValues("invalid_price")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.regime), 0)
	assert.InDelta(t, -2.5, testutil.ToFloat64(m.trendSignal), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.ledgerSize), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.exposure))
	assert.Equal(t, 1, testutil.CollectAndCount(m.cycleSeconds))
}

func TestMetricsDoubleRegister(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetrics(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.Order("BUY")
		m.OrderFailed("BUY")
		m.CycleError("x")
		m.Regime(false)
		m.TrendSignal(1)
		m.LedgerSize(1)
		m.Exposure(nil)
		m.CycleDuration(time.Second)
	})
}
