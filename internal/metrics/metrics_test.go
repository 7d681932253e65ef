package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Refresh(RefreshOK)
	m.Refresh(RefreshOK)
	m.Refresh(RefreshFailed)
	m.Retried()
	m.QueueLength(3)
	m.ForcedLogout()

	require.Equal(t, 2.0, testutil.ToFloat64(m.refreshes.WithLabelValues(RefreshOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.refreshes.WithLabelValues(RefreshFailed)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.retried))
	require.Equal(t, 3.0, testutil.ToFloat64(m.queueLength))
	require.Equal(t, 1.0, testutil.ToFloat64(m.forcedLogouts))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Equal(t, 5, n)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.Refresh(RefreshOK)
		m.Retried()
		m.QueueLength(1)
		m.ForcedLogout()
	})
}

func TestNew_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	require.Panics(t, func() { New(reg) })
}
