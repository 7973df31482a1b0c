package alerting

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/c360/vitalstream/types/vital"
)

// conditionExpression is the typed form of a composite rule's
// condition-expression JSON payload.
type conditionExpression struct {
	LogicalOperator string             `json:"logical_operator"`
	Conditions      []conditionPayload `json:"conditions"`
}

type conditionPayload struct {
	PhysicalSign    string   `json:"physical_sign"`
	Operator        string   `json:"operator"`
	Threshold       *float64 `json:"threshold"`
	DurationSeconds int      `json:"duration_seconds"`
}

// Compiler turns raw rule definitions into a CompiledRuleSet. Filtering
// (enabled flag, effective time window, effective weekdays) happens here
// against the current wall-clock time, not the event timestamp. A
// malformed definition is skipped with a log entry; it never aborts
// compilation of the remaining definitions.
type Compiler struct {
	now     func() time.Time
	logger  *slog.Logger
	metrics *EngineMetrics
}

func newCompiler(logger *slog.Logger, metrics *EngineMetrics, now func() time.Time) *Compiler {
	if now == nil {
		now = time.Now
	}
	return &Compiler{
		now:     now,
		logger:  logger.With("component", "rule-compiler"),
		metrics: metrics,
	}
}

// Compile filters and transforms definitions into compiled variants.
// The per-category order of the output follows the input order, which
// the rule store guarantees is priority ascending.
func (c *Compiler) Compile(defs []vital.RuleDefinition) vital.CompiledRuleSet {
	var set vital.CompiledRuleSet
	now := c.now()

	for _, def := range defs {
		if !def.Enabled || def.Deleted {
			continue
		}
		if !c.withinEffectiveWindow(def, now) {
			c.skip("inactive_window")
			continue
		}
		if !c.onEffectiveWeekday(def, now) {
			c.skip("inactive_weekday")
			continue
		}

		category, err := vital.ParseCategory(def.Category)
		if err != nil {
			c.logger.Warn("skipping rule with unknown category",
				"rule_id", def.ID, "category", def.Category)
			c.skip("unknown_category")
			continue
		}

		switch category {
		case vital.CategorySingle:
			rule, err := c.compileSingle(def)
			if err != nil {
				c.logger.Warn("skipping invalid single rule",
					"rule_id", def.ID, "error", err)
				c.skip("invalid_single")
				continue
			}
			set.Single = append(set.Single, rule)
		case vital.CategoryComposite:
			rule, err := c.compileComposite(def)
			if err != nil {
				c.logger.Warn("skipping invalid composite rule",
					"rule_id", def.ID, "error", err)
				c.skip("invalid_composite")
				continue
			}
			set.Composite = append(set.Composite, rule)
		case vital.CategoryComplex:
			// Reserved category, no evaluation semantics yet.
			c.logger.Debug("skipping complex rule", "rule_id", def.ID)
			c.skip("complex_unimplemented")
		}
	}

	if c.metrics != nil {
		c.metrics.compiledRules.WithLabelValues("single").Set(float64(len(set.Single)))
		c.metrics.compiledRules.WithLabelValues("composite").Set(float64(len(set.Composite)))
		c.metrics.compiledRules.WithLabelValues("complex").Set(float64(len(set.Complex)))
	}
	return set
}

func (c *Compiler) skip(reason string) {
	if c.metrics != nil {
		c.metrics.rulesSkipped.WithLabelValues(reason).Inc()
	}
}

func (c *Compiler) compileSingle(def vital.RuleDefinition) (vital.CompiledSingleRule, error) {
	if strings.TrimSpace(def.PhysicalSign) == "" {
		return vital.CompiledSingleRule{}, errMissingSign(def.ID)
	}
	return vital.CompiledSingleRule{
		RuleID:       def.ID,
		PhysicalSign: def.PhysicalSign,
		ThresholdMin: def.ThresholdMin,
		ThresholdMax: def.ThresholdMax,
		RuleMeta:     buildMeta(def),
	}, nil
}

func (c *Compiler) compileComposite(def vital.RuleDefinition) (vital.CompiledCompositeRule, error) {
	if strings.TrimSpace(def.ConditionExpression) == "" {
		return vital.CompiledCompositeRule{}, errEmptyExpression(def.ID)
	}

	var expr conditionExpression
	if err := json.Unmarshal([]byte(def.ConditionExpression), &expr); err != nil {
		return vital.CompiledCompositeRule{}, errBadExpression(def.ID, err)
	}

	conditions := make([]vital.CompiledCondition, 0, len(expr.Conditions))
	for i, cond := range expr.Conditions {
		if strings.TrimSpace(cond.PhysicalSign) == "" || cond.Operator == "" || cond.Threshold == nil {
			// Drop the one condition, keep the rest.
			c.logger.Warn("dropping incomplete composite condition",
				"rule_id", def.ID, "condition_index", i)
			continue
		}
		op := vital.ConditionOperator(strings.TrimSpace(cond.Operator))
		if _, known := op.Apply(0, 0); !known {
			c.logger.Warn("dropping condition with unknown operator",
				"rule_id", def.ID, "operator", cond.Operator)
			continue
		}
		conditions = append(conditions, vital.CompiledCondition{
			PhysicalSign:    cond.PhysicalSign,
			Operator:        op,
			Threshold:       *cond.Threshold,
			DurationSeconds: cond.DurationSeconds,
		})
	}
	if len(conditions) == 0 {
		return vital.CompiledCompositeRule{}, errNoConditions(def.ID)
	}

	return vital.CompiledCompositeRule{
		RuleID:     def.ID,
		Conditions: conditions,
		Logical:    vital.ParseLogicalOperator(expr.LogicalOperator),
		RuleMeta:   buildMeta(def),
	}, nil
}

// withinEffectiveWindow checks the rule's daily active window. A window
// whose start is later than its end wraps past midnight, so 22:00-06:00
// is active at 23:00 and at 03:00 but not at noon. Rules without a full
// window, or with an unparseable one, are treated as always active.
func (c *Compiler) withinEffectiveWindow(def vital.RuleDefinition, now time.Time) bool {
	if def.EffectiveTimeStart == "" || def.EffectiveTimeEnd == "" {
		return true
	}
	start, okStart := parseMinuteOfDay(def.EffectiveTimeStart)
	end, okEnd := parseMinuteOfDay(def.EffectiveTimeEnd)
	if !okStart || !okEnd {
		c.logger.Warn("rule has unparseable effective time window, treating as always active",
			"rule_id", def.ID, "start", def.EffectiveTimeStart, "end", def.EffectiveTimeEnd)
		return true
	}

	minute := now.Hour()*60 + now.Minute()
	if start > end {
		return minute > start || minute < end
	}
	return minute > start && minute < end
}

// onEffectiveWeekday checks the rule's weekday list, where 1 is Monday
// and 7 is Sunday. An empty list means every day.
func (c *Compiler) onEffectiveWeekday(def vital.RuleDefinition, now time.Time) bool {
	if len(def.EffectiveWeekdays) == 0 {
		return true
	}
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	for _, d := range def.EffectiveWeekdays {
		if d == weekday {
			return true
		}
	}
	return false
}

// parseMinuteOfDay parses "HH:MM" into minutes since midnight.
func parseMinuteOfDay(s string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

func buildMeta(def vital.RuleDefinition) vital.RuleMeta {
	meta := vital.RuleMeta{
		TrendDuration:     def.TrendDuration,
		TimeWindowSeconds: def.TimeWindowSeconds,
		CooldownSeconds:   def.CooldownSeconds,
		PriorityLevel:     def.PriorityLevel,
		Severity:          def.SeverityLevel,
		MessageTemplate:   def.AlertMessage,
		Channels:          def.EnabledChannels,
	}
	if meta.TrendDuration <= 0 {
		meta.TrendDuration = vital.DefaultTrendDuration
	}
	if meta.TimeWindowSeconds <= 0 {
		meta.TimeWindowSeconds = vital.DefaultTimeWindowSeconds
	}
	if meta.CooldownSeconds <= 0 {
		meta.CooldownSeconds = vital.DefaultCooldownSeconds
	}
	if meta.PriorityLevel <= 0 {
		meta.PriorityLevel = vital.DefaultPriorityLevel
	}
	if meta.Severity == "" {
		meta.Severity = vital.DefaultSeverity
	}
	if len(meta.Channels) == 0 {
		meta.Channels = []string{vital.DefaultChannel}
	}
	return meta
}
