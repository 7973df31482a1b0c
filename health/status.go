// Package health tracks the health of the service's subsystems (engine,
// NATS, rule store, Kafka consumer) and exposes an aggregate view over
// HTTP.
package health

import (
	"regexp"
	"strings"
	"time"
)

// Status state constants
const (
	StateHealthy   = "healthy"
	StateDegraded  = "degraded"
	StateUnhealthy = "unhealthy"
)

// Pre-compiled regexes for error message sanitization
var (
	urlRegex        = regexp.MustCompile(`(?:https?|nats|wss?|mysql|kafka)://[^\s]+`)
	unixPathRegex   = regexp.MustCompile(`/[a-zA-Z0-9/_.-]+`)
	ipAddrRegex     = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	portRegex       = regexp.MustCompile(`:\d{2,5}\b`)
	credentialRegex = regexp.MustCompile(`(?i)(password|token|key|secret|credential|dsn)[^a-zA-Z]*[:=][^,\s}]+`)
)

// Status is the health state of one subsystem at a point in time.
type Status struct {
	Component   string    `json:"component"`
	Healthy     bool      `json:"healthy"`
	Status      string    `json:"status"` // healthy, degraded, unhealthy
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	SubStatuses []Status  `json:"sub_statuses,omitempty"`
}

// NewHealthy builds a healthy status.
func NewHealthy(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   true,
		Status:    StateHealthy,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewDegraded builds a degraded status. Degraded subsystems keep the
// service running with reduced guarantees, like a missing distributed
// cache tier.
func NewDegraded(component, message string) Status {
	return Status{
		Component: component,
		Status:    StateDegraded,
		Message:   SanitizeMessage(message),
		Timestamp: time.Now(),
	}
}

// NewUnhealthy builds an unhealthy status.
func NewUnhealthy(component, message string) Status {
	return Status{
		Component: component,
		Status:    StateUnhealthy,
		Message:   SanitizeMessage(message),
		Timestamp: time.Now(),
	}
}

// IsHealthy reports whether the status is healthy.
func (s Status) IsHealthy() bool {
	return s.Status == StateHealthy
}

// Aggregate folds subsystem statuses into one system status: unhealthy
// if any subsystem is unhealthy, degraded if any is degraded, healthy
// otherwise.
func Aggregate(systemName string, statuses []Status) Status {
	system := NewHealthy(systemName, "all subsystems healthy")
	system.SubStatuses = statuses

	degraded := 0
	for _, s := range statuses {
		switch s.Status {
		case StateUnhealthy:
			system.Healthy = false
			system.Status = StateUnhealthy
			system.Message = s.Component + " is unhealthy"
			return system
		case StateDegraded:
			degraded++
		}
	}
	if degraded > 0 {
		system.Healthy = false
		system.Status = StateDegraded
		system.Message = "running with degraded subsystems"
	}
	return system
}

// SanitizeMessage strips connection strings, paths, addresses and
// credential fragments from a message before it leaves the process.
// Health endpoints are often reachable from broader networks than logs.
func SanitizeMessage(msg string) string {
	if msg == "" {
		return ""
	}
	sanitized := urlRegex.ReplaceAllString(msg, "[URL]")
	sanitized = unixPathRegex.ReplaceAllString(sanitized, "[PATH]")
	sanitized = ipAddrRegex.ReplaceAllString(sanitized, "[IP]")
	sanitized = portRegex.ReplaceAllString(sanitized, "[PORT]")

	lower := strings.ToLower(sanitized)
	if strings.Contains(lower, "password") || strings.Contains(lower, "token") ||
		strings.Contains(lower, "key") || strings.Contains(lower, "secret") ||
		strings.Contains(lower, "credential") || strings.Contains(lower, "dsn") {
		sanitized = credentialRegex.ReplaceAllString(sanitized, "[REDACTED]")
	}
	return sanitized
}
