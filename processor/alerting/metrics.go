package alerting

import (
	"github.com/c360/vitalstream/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics holds Prometheus metrics for the alerting engine
type EngineMetrics struct {
	evaluationsTotal    prometheus.Counter
	evaluationDuration  prometheus.Histogram
	alertsTriggered     *prometheus.CounterVec
	categoryTimeouts    *prometheus.CounterVec
	cacheTierHits       *prometheus.CounterVec
	storeQueries        *prometheus.CounterVec
	refreshFailures     prometheus.Counter
	compiledRules       *prometheus.GaugeVec
	rulesSkipped        *prometheus.CounterVec
	localCacheSize      prometheus.Gauge
}

// newEngineMetrics creates and registers engine metrics. A nil registry
// disables metrics (nil input = nil feature pattern).
func newEngineMetrics(registry *metric.MetricsRegistry) *EngineMetrics {
	if registry == nil {
		return nil
	}

	metrics := &EngineMetrics{
		evaluationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vitalstream",
			Subsystem: "alerting",
			Name:      "evaluations_total",
			Help:      "Total measurement events evaluated",
		}),

		evaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vitalstream",
			Subsystem: "alerting",
			Name:      "evaluation_duration_seconds",
			Help:      "End-to-end duration of one evaluation call",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 5.0},
		}),

		alertsTriggered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalstream",
			Subsystem: "alerting",
			Name:      "alerts_triggered_total",
			Help:      "Alerts produced by rule evaluation",
		}, []string{"category", "severity"}),

		categoryTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalstream",
			Subsystem: "alerting",
			Name:      "category_timeouts_total",
			Help:      "Category evaluation tasks abandoned at the join deadline",
		}, []string{"category"}),

		cacheTierHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalstream",
			Subsystem: "alerting",
			Name:      "cache_tier_hits_total",
			Help:      "Rule lookups served per cache tier",
		}, []string{"tier"}),

		storeQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalstream",
			Subsystem: "alerting",
			Name:      "store_queries_total",
			Help:      "Authoritative rule store queries",
		}, []string{"status"}),

		refreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vitalstream",
			Subsystem: "alerting",
			Name:      "distributed_refresh_failures_total",
			Help:      "Fire-and-forget distributed cache refreshes that failed",
		}),

		compiledRules: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "vitalstream",
			Subsystem: "alerting",
			Name:      "compiled_rules",
			Help:      "Rules in the most recently compiled set, per category",
		}, []string{"category"}),

		rulesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalstream",
			Subsystem: "alerting",
			Name:      "rules_skipped_total",
			Help:      "Rule definitions skipped during compilation",
		}, []string{"reason"}),

		localCacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vitalstream",
			Subsystem: "alerting",
			Name:      "local_cache_size",
			Help:      "Tenants currently held in the process-local rule cache",
		}),
	}

	registry.PrometheusRegistry().MustRegister(
		metrics.evaluationsTotal,
		metrics.evaluationDuration,
		metrics.alertsTriggered,
		metrics.categoryTimeouts,
		metrics.cacheTierHits,
		metrics.storeQueries,
		metrics.refreshFailures,
		metrics.compiledRules,
		metrics.rulesSkipped,
		metrics.localCacheSize,
	)

	return metrics
}
