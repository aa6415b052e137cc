/*
Copyright © 2026 Parsefence Authors.

Released under MIT license.
*/

package limits

import "github.com/prometheus/client_golang/prometheus"

// MetricsCollector represents a collector of metrics to analyze how limits are
// written and contested across a processing session.
type MetricsCollector interface {
	// IncWriteApplied increments the total number of limit writes that passed
	// the precedence gate.
	IncWriteApplied(p Provenance)

	// IncWriteRejected increments the total number of limit writes rejected by
	// the precedence gate.
	IncWriteRejected(p Provenance)

	// IncUnknownProperty increments the total number of setter calls with a
	// property name not managed by the registry.
	IncUnknownProperty()

	// IncWarningEmitted increments the total number of deduplicated parser
	// warnings actually emitted.
	IncWarningEmitted()
}

const metricsLabelProvenance = "provenance"

// PrometheusMetricsOpts represents options for PrometheusMetrics.
type PrometheusMetricsOpts struct {
	// Namespace is a namespace for metrics. It will be prepended to all metric names.
	Namespace string

	// ConstLabels is a set of labels that will be applied to all metrics.
	ConstLabels prometheus.Labels

	// CurriedLabelNames is a list of label names that will be curried with the provided labels.
	// See PrometheusMetrics.MustCurryWith method for more details.
	// Keep in mind that if this list is not empty,
	// PrometheusMetrics.MustCurryWith method must be called further with the same labels.
	// Otherwise, the collector will panic.
	CurriedLabelNames []string
}

// PrometheusMetrics represents Prometheus metrics for the limit registry.
type PrometheusMetrics struct {
	WritesAppliedTotal     *prometheus.CounterVec
	WritesRejectedTotal    *prometheus.CounterVec
	UnknownPropertiesTotal *prometheus.CounterVec
	WarningsEmittedTotal   *prometheus.CounterVec
}

var _ MetricsCollector = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates a new instance of PrometheusMetrics with default options.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWithOpts(PrometheusMetricsOpts{})
}

// NewPrometheusMetricsWithOpts creates a new instance of PrometheusMetrics with the provided options.
func NewPrometheusMetricsWithOpts(opts PrometheusMetricsOpts) *PrometheusMetrics {
	labelsWithProvenance := make([]string, 0, len(opts.CurriedLabelNames)+1)
	labelsWithProvenance = append(labelsWithProvenance, opts.CurriedLabelNames...)
	labelsWithProvenance = append(labelsWithProvenance, metricsLabelProvenance)

	writesAppliedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "limit_writes_applied_total",
			Help:        "Number of limit writes that passed the precedence gate.",
			ConstLabels: opts.ConstLabels,
		},
		labelsWithProvenance,
	)

	writesRejectedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "limit_writes_rejected_total",
			Help:        "Number of limit writes rejected by the precedence gate.",
			ConstLabels: opts.ConstLabels,
		},
		labelsWithProvenance,
	)

	unknownPropertiesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "limit_unknown_properties_total",
			Help:        "Number of setter calls with an unmanaged property name.",
			ConstLabels: opts.ConstLabels,
		},
		opts.CurriedLabelNames,
	)

	warningsEmittedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "limit_warnings_emitted_total",
			Help:        "Number of deduplicated parser warnings actually emitted.",
			ConstLabels: opts.ConstLabels,
		},
		opts.CurriedLabelNames,
	)

	return &PrometheusMetrics{
		WritesAppliedTotal:     writesAppliedTotal,
		WritesRejectedTotal:    writesRejectedTotal,
		UnknownPropertiesTotal: unknownPropertiesTotal,
		WarningsEmittedTotal:   warningsEmittedTotal,
	}
}

// MustCurryWith curries the metrics collector with the provided labels.
func (pm *PrometheusMetrics) MustCurryWith(labels prometheus.Labels) *PrometheusMetrics {
	return &PrometheusMetrics{
		WritesAppliedTotal:     pm.WritesAppliedTotal.MustCurryWith(labels),
		WritesRejectedTotal:    pm.WritesRejectedTotal.MustCurryWith(labels),
		UnknownPropertiesTotal: pm.UnknownPropertiesTotal.MustCurryWith(labels),
		WarningsEmittedTotal:   pm.WarningsEmittedTotal.MustCurryWith(labels),
	}
}

// MustRegister does registration of metrics collector in Prometheus and panics if any error occurs.
func (pm *PrometheusMetrics) MustRegister() {
	prometheus.MustRegister(
		pm.WritesAppliedTotal,
		pm.WritesRejectedTotal,
		pm.UnknownPropertiesTotal,
		pm.WarningsEmittedTotal,
	)
}

// Unregister cancels registration of metrics collector in Prometheus.
func (pm *PrometheusMetrics) Unregister() {
	prometheus.Unregister(pm.WritesAppliedTotal)
	prometheus.Unregister(pm.WritesRejectedTotal)
	prometheus.Unregister(pm.UnknownPropertiesTotal)
	prometheus.Unregister(pm.WarningsEmittedTotal)
}

// IncWriteApplied increments the total number of limit writes that passed the precedence gate.
func (pm *PrometheusMetrics) IncWriteApplied(p Provenance) {
	pm.WritesAppliedTotal.With(prometheus.Labels{metricsLabelProvenance: p.String()}).Inc()
}

// IncWriteRejected increments the total number of limit writes rejected by the precedence gate.
func (pm *PrometheusMetrics) IncWriteRejected(p Provenance) {
	pm.WritesRejectedTotal.With(prometheus.Labels{metricsLabelProvenance: p.String()}).Inc()
}

// IncUnknownProperty increments the total number of setter calls with an unmanaged property name.
func (pm *PrometheusMetrics) IncUnknownProperty() {
	pm.UnknownPropertiesTotal.With(nil).Inc()
}

// IncWarningEmitted increments the total number of deduplicated parser warnings actually emitted.
func (pm *PrometheusMetrics) IncWarningEmitted() {
	pm.WarningsEmittedTotal.With(nil).Inc()
}

type disabledMetrics struct{}

func (disabledMetrics) IncWriteApplied(Provenance)  {}
func (disabledMetrics) IncWriteRejected(Provenance) {}
func (disabledMetrics) IncUnknownProperty()         {}
func (disabledMetrics) IncWarningEmitted()          {}

var disabledMetricsCollector = disabledMetrics{}
