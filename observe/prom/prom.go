// Package prom adapts the core's debug event stream onto real Prometheus
// collectors, registered against a caller-supplied prometheus.Registry.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirtask/structscope/debug"
)

// Metrics holds the Prometheus collectors fed by a debug subscription.
type Metrics struct {
	scopesOpened  *prometheus.CounterVec
	scopesClosed  *prometheus.CounterVec
	tasksRegistered *prometheus.CounterVec
	tasksByStatus *prometheus.CounterVec
	taskDuration  *prometheus.HistogramVec

	unsubscribe func()
}

// New creates the collectors, registers them on reg, and subscribes to the
// debug event stream. Call Close to unsubscribe. It does not call
// debug.Enable itself — the caller controls when emission is turned on.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scopesOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "structscope",
			Name:      "scopes_opened_total",
			Help:      "Scopes opened, by combinator type.",
		}, []string{"type"}),
		scopesClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "structscope",
			Name:      "scopes_closed_total",
			Help:      "Scopes closed, by combinator type.",
		}, []string{"type"}),
		tasksRegistered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "structscope",
			Name:      "tasks_registered_total",
			Help:      "Tasks bound to a scope, by parent scope type.",
		}, []string{"parent_scope_type"}),
		tasksByStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "structscope",
			Name:      "tasks_terminal_total",
			Help:      "Tasks reaching a terminal status.",
		}, []string{"status"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "structscope",
			Name:      "task_duration_seconds",
			Help:      "Task wall-clock duration from start to terminal transition.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	reg.MustRegister(m.scopesOpened, m.scopesClosed, m.tasksRegistered, m.tasksByStatus, m.taskDuration)

	m.unsubscribe = debug.Subscribe(m.observe)
	return m
}

// Close stops feeding the collectors from the debug event stream. The
// collectors themselves remain registered.
func (m *Metrics) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m *Metrics) observe(e debug.Event) {
	switch e.Kind {
	case debug.ScopeOpened:
		m.scopesOpened.WithLabelValues(string(e.ScopeType)).Inc()
	case debug.ScopeClosed:
		m.scopesClosed.WithLabelValues(string(e.ScopeType)).Inc()
	case debug.TaskRegistered:
		m.tasksRegistered.WithLabelValues(string(e.ScopeType)).Inc()
	case debug.TaskUpdated:
		if e.Status == "running" {
			return
		}
		m.tasksByStatus.WithLabelValues(e.Status).Inc()
		if !e.Timing.StartTime.IsZero() && !e.Timing.EndTime.IsZero() {
			m.taskDuration.WithLabelValues(e.Status).Observe(e.Timing.EndTime.Sub(e.Timing.StartTime).Seconds())
		}
	}
}
