package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all platform-level metrics (not domain-specific)
type Metrics struct {
	// Service metrics
	ServiceStatus      *prometheus.GaugeVec
	EventsReceived     *prometheus.CounterVec
	EventsProcessed    *prometheus.CounterVec
	AlertsPublished    *prometheus.CounterVec
	ProcessingDuration *prometheus.HistogramVec
	ErrorsTotal        *prometheus.CounterVec

	// NATS metrics
	NATSConnected  prometheus.Gauge
	NATSReconnects prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ServiceStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "vitalstream",
				Subsystem: "service",
				Name:      "status",
				Help:      "Service status (0=stopped, 1=starting, 2=running, 3=stopping, 4=failed)",
			},
			[]string{"service"},
		),

		EventsReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vitalstream",
				Subsystem: "events",
				Name:      "received_total",
				Help:      "Total number of measurement events received",
			},
			[]string{"service", "source"},
		),

		EventsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vitalstream",
				Subsystem: "events",
				Name:      "processed_total",
				Help:      "Total number of measurement events processed",
			},
			[]string{"service", "status"},
		),

		AlertsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vitalstream",
				Subsystem: "alerts",
				Name:      "published_total",
				Help:      "Total number of alert results published downstream",
			},
			[]string{"service", "status"},
		),

		ProcessingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vitalstream",
				Subsystem: "events",
				Name:      "processing_duration_seconds",
				Help:      "Time spent processing measurement events",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"service"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vitalstream",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors by service and class",
			},
			[]string{"service", "class"},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "vitalstream",
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (1=connected, 0=disconnected)",
			},
		),

		NATSReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "vitalstream",
				Subsystem: "nats",
				Name:      "reconnects_total",
				Help:      "Total number of NATS reconnections",
			},
		),
	}
}

// ObserveProcessing records one processed event with its duration and status.
func (m *Metrics) ObserveProcessing(service, status string, d time.Duration) {
	m.EventsProcessed.WithLabelValues(service, status).Inc()
	m.ProcessingDuration.WithLabelValues(service).Observe(d.Seconds())
}

// RecordError counts one error under its classification.
func (m *Metrics) RecordError(service, class string) {
	m.ErrorsTotal.WithLabelValues(service, class).Inc()
}
