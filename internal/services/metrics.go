package services

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Workflow outcome labels.
const (
	OutcomeDeleted  = "deleted"
	OutcomeAppended = "appended"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
)

// Observer records workflow outcomes.
type Observer interface {
	RecordOutcome(workflow, outcome string, duration time.Duration)
	RecordConflict(workflow string)
}

// PrometheusObserver exports workflow metrics to Prometheus.
type PrometheusObserver struct {
	outcomes  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	conflicts *prometheus.CounterVec
}

func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "asset_records"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_outcomes_total",
			Help:      "Terminal outcomes of the delete and comment workflows.",
		}, []string{"workflow", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_duration_seconds",
			Help:      "Latency of the delete and comment workflows.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"workflow"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "version_conflicts_total",
			Help:      "Optimistic concurrency conflicts on record replace.",
		}, []string{"workflow"}),
	}
	for _, c := range []prometheus.Collector{o.outcomes, o.duration, o.conflicts} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register workflow metric: %w", err)
		}
	}
	return o, nil
}

func (o *PrometheusObserver) RecordOutcome(workflow, outcome string, duration time.Duration) {
	if o == nil {
		return
	}
	o.outcomes.WithLabelValues(workflow, outcome).Inc()
	o.duration.WithLabelValues(workflow).Observe(duration.Seconds())
}

func (o *PrometheusObserver) RecordConflict(workflow string) {
	if o == nil {
		return
	}
	o.conflicts.WithLabelValues(workflow).Inc()
}

type nopObserver struct{}

func (nopObserver) RecordOutcome(string, string, time.Duration) {}
func (nopObserver) RecordConflict(string)                       {}
