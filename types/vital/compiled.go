package vital

// Default values applied during rule compilation when a definition leaves
// a field unset.
const (
	DefaultTrendDuration     = 1
	DefaultTimeWindowSeconds = 300
	DefaultCooldownSeconds   = 600
	DefaultPriorityLevel     = 3
	DefaultSeverity          = "MEDIUM"
	DefaultChannel           = "internal_message"
)

// RuleMeta carries the defaulted metadata shared by all compiled rule
// variants.
type RuleMeta struct {
	TrendDuration     int
	TimeWindowSeconds int
	CooldownSeconds   int
	PriorityLevel     int
	Severity          string
	MessageTemplate   string
	Channels          []string
}

// CompiledSingleRule is a validated single-metric threshold rule.
// At least one of ThresholdMin/ThresholdMax may be set; a rule with
// neither simply never fires.
type CompiledSingleRule struct {
	RuleID       int64
	PhysicalSign string
	ThresholdMin *float64
	ThresholdMax *float64
	RuleMeta
}

// CompiledCondition is one comparison inside a composite rule.
type CompiledCondition struct {
	PhysicalSign    string
	Operator        ConditionOperator
	Threshold       float64
	DurationSeconds int
}

// CompiledCompositeRule combines multiple conditions under one logical
// operator. Conditions preserve their order in the source expression.
type CompiledCompositeRule struct {
	RuleID     int64
	Conditions []CompiledCondition
	Logical    LogicalOperator
	RuleMeta
}

// CompiledComplexRule is a reserved variant for future multi-stage rules.
// Compilation never emits one today.
type CompiledComplexRule struct {
	RuleID int64
	RuleMeta
}

// CompiledRuleSet holds the compiled rules for one tenant, grouped by
// category. It is rebuilt fresh on every evaluation call from the
// currently cached raw definitions; compilation results are intentionally
// not cached.
type CompiledRuleSet struct {
	Single    []CompiledSingleRule
	Composite []CompiledCompositeRule
	Complex   []CompiledComplexRule
}

// Empty reports whether the set contains no rules at all.
func (s CompiledRuleSet) Empty() bool {
	return len(s.Single) == 0 && len(s.Composite) == 0 && len(s.Complex) == 0
}

// Total returns the number of compiled rules across all categories.
func (s CompiledRuleSet) Total() int {
	return len(s.Single) + len(s.Composite) + len(s.Complex)
}
