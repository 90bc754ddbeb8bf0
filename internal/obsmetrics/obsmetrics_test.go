package obsmetrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, vec.WithLabelValues(labels...).(prometheus.Metric).Write(m))
	return m.GetCounter().GetValue()
}

func TestNewWithRegistry_RegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)
	require.NotNil(t, m)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestRecordCommand_IncrementsCounterAndHistogram(t *testing.T) {
	m := NewWithRegistry(nil)
	m.RecordCommand("AAPL", "PlaceOrder", 5*time.Millisecond)
	require.Equal(t, float64(1), counterValue(t, m.CommandsTotal, "AAPL", "PlaceOrder"))
}

func TestRecordOrderAcceptedAndRejected(t *testing.T) {
	m := NewWithRegistry(nil)
	m.RecordOrderAccepted("AAPL", "buy")
	m.RecordOrderRejected("AAPL", "unknown_instrument")

	require.Equal(t, float64(1), counterValue(t, m.OrdersAccepted, "AAPL", "buy"))
	require.Equal(t, float64(1), counterValue(t, m.OrdersRejected, "AAPL", "unknown_instrument"))
}

func TestRecordFillAndPhaseTransitionAndPersistenceOutcome(t *testing.T) {
	m := NewWithRegistry(nil)
	m.RecordFill("AAPL")
	m.RecordPhaseTransition("Open")
	m.RecordPersistenceOutcome("store", "Stored")

	require.Equal(t, float64(1), counterValue(t, m.FillsTotal, "AAPL"))
	require.Equal(t, float64(1), counterValue(t, m.PhaseTransitions, "Open"))
	require.Equal(t, float64(1), counterValue(t, m.PersistenceOutcome, "store", "Stored"))
}

func TestSetQueueDepth(t *testing.T) {
	m := NewWithRegistry(nil)
	m.SetQueueDepth("AAPL", 42)

	g := &dto.Metric{}
	require.NoError(t, m.QueueDepth.WithLabelValues("AAPL").(prometheus.Metric).Write(g))
	require.Equal(t, float64(42), g.GetGauge().GetValue())
}
