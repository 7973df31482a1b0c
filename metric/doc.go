// Package metric provides the Prometheus metrics registry and HTTP exposure
// for VitalStream.
//
// The MetricsRegistry owns a private prometheus.Registry, registers the core
// platform metrics at construction, and offers namespaced registration for
// component-specific metrics keyed by "service.metric" so duplicate
// registrations surface as classified errors instead of panics.
//
// Core platform metrics cover event intake, processing outcomes, alert
// publication, error counts by classification, and NATS connection state.
// Components register their own metrics (cache tiers, worker pools, the
// evaluation engine) against the same registry so everything is served from
// one /metrics endpoint via Server.
package metric
