// Package metrics exports editor activity as prometheus counters.
package metrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sohail300/pipeline/pkg/domain"
)

// Metrics holds the editor collectors.
type Metrics struct {
	Drops        *prometheus.CounterVec
	FieldChanges *prometheus.CounterVec
	Connects     *prometheus.CounterVec
	Submissions  *prometheus.CounterVec
	SubmitTime   *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
// Collectors already registered by an earlier call are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Drops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_node_drops_total",
				Help: "Total number of nodes created from palette drops",
			},
			[]string{"node_type"},
		),
		FieldChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_field_changes_total",
				Help: "Total number of field edits by persistence result",
			},
			[]string{"node_type", "result"},
		),
		Connects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_connects_total",
				Help: "Total number of connection attempts by result",
			},
			[]string{"result"},
		),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_submissions_total",
				Help: "Total number of pipeline submissions by outcome",
			},
			[]string{"outcome"},
		),
		SubmitTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "pipeline_submission_duration_seconds",
				Help: "Duration of validation service round trips",
			},
			[]string{"outcome"},
		),
	}

	var err error
	if m.Drops, err = register(reg, m.Drops); err != nil {
		return nil, err
	}
	if m.FieldChanges, err = register(reg, m.FieldChanges); err != nil {
		return nil, err
	}
	if m.Connects, err = register(reg, m.Connects); err != nil {
		return nil, err
	}
	if m.Submissions, err = register(reg, m.Submissions); err != nil {
		return nil, err
	}
	if m.SubmitTime, err = register(reg, m.SubmitTime); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeDrop: func(_ context.Context, e *domain.NodeEvent) {
			m.Drops.WithLabelValues(e.NodeType).Inc()
		},
		OnFieldChange: func(_ context.Context, e *domain.FieldEvent) {
			m.FieldChanges.WithLabelValues(e.NodeType, result(e.Err)).Inc()
		},
		OnConnect: func(_ context.Context, e *domain.EdgeEvent) {
			m.Connects.WithLabelValues(result(e.Err)).Inc()
		},
		OnSubmit: func(_ context.Context, e *domain.SubmitEvent) {
			m.Submissions.WithLabelValues(e.Outcome).Inc()
			if e.Outcome != domain.OutcomeRejected {
				m.SubmitTime.WithLabelValues(e.Outcome).Observe(e.Duration.Seconds())
			}
		},
	}
}
