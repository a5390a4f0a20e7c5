package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the session collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	SessionsActive   prometheus.Gauge
	SessionsStarted  prometheus.Counter
	PhaseTransitions *prometheus.CounterVec
	AppsBlocked      *prometheus.CounterVec
	TerminateErrors  *prometheus.CounterVec
	MonitorErrors    prometheus.Counter
	WorkerOverruns   *prometheus.CounterVec
}

// New creates collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "focusguard_sessions_active",
			Help: "1 while a focus session is running",
		}),
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "focusguard_sessions_started_total",
			Help: "Total number of focus sessions started",
		}),
		PhaseTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "focusguard_phase_transitions_total",
				Help: "Focus/break transitions by entered phase",
			},
			[]string{"phase"},
		),
		AppsBlocked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "focusguard_apps_blocked_total",
				Help: "Processes terminated by the monitor",
			},
			[]string{"process"},
		),
		TerminateErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "focusguard_terminate_errors_total",
				Help: "Failed termination attempts by category",
			},
			[]string{"category"},
		),
		MonitorErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "focusguard_monitor_errors_total",
			Help: "Unexpected failures during a monitor pass",
		}),
		WorkerOverruns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "focusguard_worker_join_overruns_total",
				Help: "Workers that did not exit within the join timeout",
			},
			[]string{"worker"},
		),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordSessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
	m.SessionsActive.Set(1)
}

func (m *Metrics) RecordSessionStopped() {
	if m == nil {
		return
	}
	m.SessionsActive.Set(0)
}

func (m *Metrics) RecordPhase(phase string) {
	if m == nil {
		return
	}
	m.PhaseTransitions.WithLabelValues(phase).Inc()
}

func (m *Metrics) RecordBlocked(process string) {
	if m == nil {
		return
	}
	m.AppsBlocked.WithLabelValues(process).Inc()
}

func (m *Metrics) RecordTerminateError(category string) {
	if m == nil {
		return
	}
	m.TerminateErrors.WithLabelValues(category).Inc()
}

func (m *Metrics) RecordMonitorError() {
	if m == nil {
		return
	}
	m.MonitorErrors.Inc()
}

func (m *Metrics) RecordOverrun(worker string) {
	if m == nil {
		return
	}
	m.WorkerOverruns.WithLabelValues(worker).Inc()
}
