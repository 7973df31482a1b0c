package vital

import "time"

// ViolationKind describes which bound of a rule an event crossed.
type ViolationKind string

// Violation kind constants
const (
	ViolationMin       ViolationKind = "min"
	ViolationMax       ViolationKind = "max"
	ViolationComposite ViolationKind = "composite"
)

// CompositeSign is the placeholder physical-sign name carried by alerts
// raised from composite rules, which span multiple signs.
const CompositeSign = "COMPOSITE"

// AlertResult is one triggered alert, ready for downstream notification
// dispatch. CurrentValue is only set for single-metric rules;
// EvaluationContext is only set for composite rules and lists the
// satisfied conditions.
type AlertResult struct {
	ID                string        `json:"id"`
	RuleID            int64         `json:"rule_id"`
	RuleType          RuleCategory  `json:"rule_type"`
	PhysicalSign      string        `json:"physical_sign"`
	CurrentValue      *float64      `json:"current_value,omitempty"`
	Violation         ViolationKind `json:"violation"`
	ThresholdMin      *float64      `json:"threshold_min,omitempty"`
	ThresholdMax      *float64      `json:"threshold_max,omitempty"`
	Severity          string        `json:"severity"`
	Message           string        `json:"message"`
	Channels          []string      `json:"channels"`
	DeviceSN          string        `json:"device_sn"`
	CustomerID        string        `json:"customer_id"`
	Timestamp         time.Time     `json:"timestamp"`
	EvaluationContext string        `json:"evaluation_context,omitempty"`
}
