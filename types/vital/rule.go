// Package vital contains the shared domain types for health-measurement
// alerting: raw rule definitions as stored by the rule-management service,
// compiled rule variants ready for evaluation, measurement events, and
// alert results.
package vital

import (
	"fmt"
	"strings"

	"github.com/c360/vitalstream/errors"
)

// RuleCategory identifies the evaluation strategy for a rule.
type RuleCategory string

// Rule category constants
const (
	CategorySingle    RuleCategory = "SINGLE"
	CategoryComposite RuleCategory = "COMPOSITE"
	CategoryComplex   RuleCategory = "COMPLEX"
)

// String implements fmt.Stringer for RuleCategory
func (c RuleCategory) String() string {
	return string(c)
}

// ParseCategory normalizes a raw category string. Matching is
// case-insensitive and an empty category defaults to SINGLE for
// backward compatibility with older rule rows.
func ParseCategory(raw string) (RuleCategory, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "SINGLE":
		return CategorySingle, nil
	case "COMPOSITE":
		return CategoryComposite, nil
	case "COMPLEX":
		return CategoryComplex, nil
	default:
		return "", errors.WrapInvalid(errors.ErrUnknownCategory, "RuleCategory", "ParseCategory",
			fmt.Sprintf("unknown rule category: %s", raw))
	}
}

// RuleDefinition is a raw, tenant-scoped alerting rule as returned by the
// rule store. Definitions are read-only here; they are created and mutated
// by the external rule-management flow.
type RuleDefinition struct {
	ID                  int64    `json:"id"`
	CustomerID          string   `json:"customer_id"`
	Category            string   `json:"category"`   // SINGLE/COMPOSITE/COMPLEX, empty means SINGLE
	PhysicalSign        string   `json:"physical_sign"`
	ThresholdMin        *float64 `json:"threshold_min,omitempty"`
	ThresholdMax        *float64 `json:"threshold_max,omitempty"`
	TrendDuration       int      `json:"trend_duration,omitempty"`
	TimeWindowSeconds   int      `json:"time_window_seconds,omitempty"`
	CooldownSeconds     int      `json:"cooldown_seconds,omitempty"`
	PriorityLevel       int      `json:"priority_level,omitempty"`
	SeverityLevel       string   `json:"severity_level,omitempty"`
	AlertMessage        string   `json:"alert_message,omitempty"` // template, see formatter tokens
	EnabledChannels     []string `json:"enabled_channels,omitempty"`
	EffectiveTimeStart  string   `json:"effective_time_start,omitempty"` // "HH:MM", local wall clock
	EffectiveTimeEnd    string   `json:"effective_time_end,omitempty"`
	EffectiveWeekdays   []int    `json:"effective_weekdays,omitempty"` // 1=Monday .. 7=Sunday
	ConditionExpression string   `json:"condition_expression,omitempty"` // JSON payload for COMPOSITE rules
	Enabled             bool     `json:"enabled"`
	Deleted             bool     `json:"deleted"`
}

// ConditionOperator is a numeric comparison operator used by composite
// rule conditions.
type ConditionOperator string

// Condition operator constants. OpEqualAlias accepts the single "="
// spelling some rule authors use.
const (
	OpGreater      ConditionOperator = ">"
	OpLess         ConditionOperator = "<"
	OpGreaterEqual ConditionOperator = ">="
	OpLessEqual    ConditionOperator = "<="
	OpEqual        ConditionOperator = "=="
	OpEqualAlias   ConditionOperator = "="
	OpNotEqual     ConditionOperator = "!="
)

// Apply compares value against threshold. The second return value is
// false when the operator is not recognized.
func (op ConditionOperator) Apply(value, threshold float64) (result, known bool) {
	switch op {
	case OpGreater:
		return value > threshold, true
	case OpLess:
		return value < threshold, true
	case OpGreaterEqual:
		return value >= threshold, true
	case OpLessEqual:
		return value <= threshold, true
	case OpEqual, OpEqualAlias:
		return value == threshold, true
	case OpNotEqual:
		return value != threshold, true
	default:
		return false, false
	}
}

// LogicalOperator combines composite rule condition results.
type LogicalOperator string

// Logical operator constants
const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// ParseLogicalOperator normalizes a raw logical operator string,
// defaulting to AND when empty.
func ParseLogicalOperator(raw string) LogicalOperator {
	if strings.EqualFold(strings.TrimSpace(raw), string(LogicalOr)) {
		return LogicalOr
	}
	return LogicalAnd
}
