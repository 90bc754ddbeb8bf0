// Package obsmetrics wires the process-wide Prometheus collectors.
package obsmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the trading system publishes. One instance
// is built at startup and threaded through the components that record
// against it; nothing here is package-global.
type Metrics struct {
	CommandsTotal      *prometheus.CounterVec
	CommandDuration    *prometheus.HistogramVec
	QueueDepth         *prometheus.GaugeVec
	OrdersAccepted     *prometheus.CounterVec
	OrdersRejected     *prometheus.CounterVec
	FillsTotal         *prometheus.CounterVec
	PhaseTransitions   *prometheus.CounterVec
	PersistenceOutcome *prometheus.CounterVec
	ActiveInstruments  prometheus.Gauge
}

// New registers collectors against the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers collectors against registerer, which may be nil
// to skip registration entirely (used by tests that build a Metrics value
// without touching the global registry).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuesim_commands_total",
				Help: "Total number of engine commands processed, by instrument and command type",
			},
			[]string{"instrument", "command"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "venuesim_command_duration_seconds",
				Help:    "Engine command processing duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"instrument", "command"},
		),
		QueueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "venuesim_command_queue_depth",
				Help: "Pending commands in an instrument's command queue",
			},
			[]string{"instrument"},
		),
		OrdersAccepted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuesim_orders_accepted_total",
				Help: "Total number of orders accepted, by instrument and side",
			},
			[]string{"instrument", "side"},
		),
		OrdersRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuesim_orders_rejected_total",
				Help: "Total number of orders rejected, by instrument and reason",
			},
			[]string{"instrument", "reason"},
		),
		FillsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuesim_fills_total",
				Help: "Total number of fills generated, by instrument",
			},
			[]string{"instrument"},
		),
		PhaseTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuesim_phase_transitions_total",
				Help: "Total number of trading-phase transitions, by target phase",
			},
			[]string{"phase"},
		),
		PersistenceOutcome: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuesim_persistence_outcomes_total",
				Help: "Total number of store/recover attempts, by operation and result",
			},
			[]string{"operation", "result"},
		),
		ActiveInstruments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "venuesim_active_instruments",
				Help: "Current number of instruments with a running trading engine",
			},
		),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.CommandsTotal,
			m.CommandDuration,
			m.QueueDepth,
			m.OrdersAccepted,
			m.OrdersRejected,
			m.FillsTotal,
			m.PhaseTransitions,
			m.PersistenceOutcome,
			m.ActiveInstruments,
		)
	}

	return m
}

// RecordCommand records completion of one engine command.
func (m *Metrics) RecordCommand(instrument, command string, duration time.Duration) {
	m.CommandsTotal.WithLabelValues(instrument, command).Inc()
	m.CommandDuration.WithLabelValues(instrument, command).Observe(duration.Seconds())
}

// SetQueueDepth reports the current depth of an instrument's command queue.
func (m *Metrics) SetQueueDepth(instrument string, depth int) {
	m.QueueDepth.WithLabelValues(instrument).Set(float64(depth))
}

// RecordOrderAccepted records an accepted order.
func (m *Metrics) RecordOrderAccepted(instrument, side string) {
	m.OrdersAccepted.WithLabelValues(instrument, side).Inc()
}

// RecordOrderRejected records a rejected order.
func (m *Metrics) RecordOrderRejected(instrument, reason string) {
	m.OrdersRejected.WithLabelValues(instrument, reason).Inc()
}

// RecordFill records one fill.
func (m *Metrics) RecordFill(instrument string) {
	m.FillsTotal.WithLabelValues(instrument).Inc()
}

// RecordPhaseTransition records a transition into phase.
func (m *Metrics) RecordPhaseTransition(phase string) {
	m.PhaseTransitions.WithLabelValues(phase).Inc()
}

// RecordPersistenceOutcome records the result of a store or recover attempt.
func (m *Metrics) RecordPersistenceOutcome(operation, result string) {
	m.PersistenceOutcome.WithLabelValues(operation, result).Inc()
}
