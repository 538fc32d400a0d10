package observability

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the editor collectors.
type Metrics struct {
	Commands    *prometheus.CounterVec
	Created     *prometheus.CounterVec
	Persist     *prometheus.CounterVec
	Diagnostics *prometheus.CounterVec
	Entities    prometheus.Gauge
	Lights      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_commands_total",
				Help: "Editor commands by name and outcome",
			},
			[]string{"command", "outcome"},
		),
		Created: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_elements_created_total",
				Help: "Elements created from the creation menus, by type tag",
			},
			[]string{"tag"},
		),
		Persist: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_persist_total",
				Help: "Save and load transactions by outcome",
			},
			[]string{"op", "outcome"},
		),
		Diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_diagnostics_total",
				Help: "Elements skipped on load or flagged on save, by kind",
			},
			[]string{"kind"},
		),
		Entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arbor_render_entities",
			Help: "Entities registered with the render scene after the last commit",
		}),
		Lights: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arbor_render_lights",
			Help: "Lights registered with the render scene after the last commit",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Commands, m.Created, m.Persist, m.Diagnostics, m.Entities, m.Lights)
	}
	return m
}

// Hooks returns the lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommand: func(_ context.Context, e *domain.CommandEvent) {
			m.Commands.WithLabelValues(e.Command, e.Outcome).Inc()
		},
		OnCreate: func(_ context.Context, e *domain.CreateEvent) {
			m.Created.WithLabelValues(e.Tag).Inc()
		},
		OnSave: func(_ context.Context, e *domain.PersistEvent) {
			m.Persist.WithLabelValues("save", domain.Classify(e.Err)).Inc()
		},
		OnLoad: func(_ context.Context, e *domain.PersistEvent) {
			m.Persist.WithLabelValues("load", domain.Classify(e.Err)).Inc()
		},
		OnDiagnostic: func(_ context.Context, e *domain.DiagnosticEvent) {
			m.Diagnostics.WithLabelValues(e.Kind).Inc()
		},
		OnCommit: func(_ context.Context, e *domain.CommitEvent) {
			m.Entities.Set(float64(len(e.Render.Entities)))
			m.Lights.Set(float64(len(e.Render.Lights)))
		},
	}
}
