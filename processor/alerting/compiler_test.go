package alerting

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/vitalstream/types/vital"
)

func fptr(v float64) *float64 {
	return &v
}

func testCompiler(now time.Time) *Compiler {
	return newCompiler(slog.Default(), nil, func() time.Time { return now })
}

// A Wednesday at 15:00 local time.
var midweekAfternoon = time.Date(2026, 8, 26, 15, 0, 0, 0, time.Local)

func singleRuleDef(id int64) vital.RuleDefinition {
	return vital.RuleDefinition{
		ID:           id,
		CustomerID:   "cust-1",
		Category:     "SINGLE",
		PhysicalSign: "heart_rate",
		ThresholdMin: fptr(60),
		ThresholdMax: fptr(100),
		Enabled:      true,
	}
}

func TestCompileSingleRule(t *testing.T) {
	c := testCompiler(midweekAfternoon)
	set := c.Compile([]vital.RuleDefinition{singleRuleDef(1)})

	require.Len(t, set.Single, 1)
	rule := set.Single[0]
	assert.Equal(t, int64(1), rule.RuleID)
	assert.Equal(t, "heart_rate", rule.PhysicalSign)
	assert.Equal(t, 60.0, *rule.ThresholdMin)
	assert.Equal(t, 100.0, *rule.ThresholdMax)
}

func TestCompileAppliesDefaults(t *testing.T) {
	c := testCompiler(midweekAfternoon)
	set := c.Compile([]vital.RuleDefinition{singleRuleDef(1)})

	require.Len(t, set.Single, 1)
	meta := set.Single[0].RuleMeta
	assert.Equal(t, vital.DefaultTrendDuration, meta.TrendDuration)
	assert.Equal(t, vital.DefaultTimeWindowSeconds, meta.TimeWindowSeconds)
	assert.Equal(t, vital.DefaultCooldownSeconds, meta.CooldownSeconds)
	assert.Equal(t, vital.DefaultPriorityLevel, meta.PriorityLevel)
	assert.Equal(t, vital.DefaultSeverity, meta.Severity)
	assert.Equal(t, []string{vital.DefaultChannel}, meta.Channels)
}

func TestCompileSkipsDisabledAndDeleted(t *testing.T) {
	c := testCompiler(midweekAfternoon)

	disabled := singleRuleDef(1)
	disabled.Enabled = false
	deleted := singleRuleDef(2)
	deleted.Deleted = true

	set := c.Compile([]vital.RuleDefinition{disabled, deleted})
	assert.True(t, set.Empty())
}

func TestCompileEmptyCategoryDefaultsToSingle(t *testing.T) {
	c := testCompiler(midweekAfternoon)
	def := singleRuleDef(1)
	def.Category = ""

	set := c.Compile([]vital.RuleDefinition{def})
	assert.Len(t, set.Single, 1)
}

func TestCompileSkipsUnknownCategoryButKeepsOthers(t *testing.T) {
	c := testCompiler(midweekAfternoon)

	unknown := singleRuleDef(1)
	unknown.Category = "FANCY"
	valid := singleRuleDef(2)

	set := c.Compile([]vital.RuleDefinition{unknown, valid})
	require.Len(t, set.Single, 1)
	assert.Equal(t, int64(2), set.Single[0].RuleID)
}

func TestCompileSkipsSingleWithoutSign(t *testing.T) {
	c := testCompiler(midweekAfternoon)
	def := singleRuleDef(1)
	def.PhysicalSign = ""

	set := c.Compile([]vital.RuleDefinition{def})
	assert.True(t, set.Empty())
}

func TestCompileSkipsComplexRules(t *testing.T) {
	c := testCompiler(midweekAfternoon)
	def := singleRuleDef(1)
	def.Category = "COMPLEX"

	set := c.Compile([]vital.RuleDefinition{def})
	assert.True(t, set.Empty())
}

func TestCompileEffectiveWindow(t *testing.T) {
	def := singleRuleDef(1)
	def.EffectiveTimeStart = "09:00"
	def.EffectiveTimeEnd = "17:00"

	at := func(hour int) *Compiler {
		return testCompiler(time.Date(2026, 8, 26, hour, 0, 0, 0, time.Local))
	}

	assert.Len(t, at(12).Compile([]vital.RuleDefinition{def}).Single, 1)
	assert.Empty(t, at(8).Compile([]vital.RuleDefinition{def}).Single)
	assert.Empty(t, at(20).Compile([]vital.RuleDefinition{def}).Single)
}

func TestCompileMidnightWrappingWindow(t *testing.T) {
	def := singleRuleDef(1)
	def.EffectiveTimeStart = "22:00"
	def.EffectiveTimeEnd = "06:00"

	at := func(hour int) *Compiler {
		return testCompiler(time.Date(2026, 8, 26, hour, 0, 0, 0, time.Local))
	}

	// Active late at night and in the early morning, inactive at noon.
	assert.Len(t, at(23).Compile([]vital.RuleDefinition{def}).Single, 1)
	assert.Len(t, at(3).Compile([]vital.RuleDefinition{def}).Single, 1)
	assert.Empty(t, at(12).Compile([]vital.RuleDefinition{def}).Single)
}

func TestCompileUnparseableWindowIsAlwaysActive(t *testing.T) {
	c := testCompiler(midweekAfternoon)
	def := singleRuleDef(1)
	def.EffectiveTimeStart = "not-a-time"
	def.EffectiveTimeEnd = "06:00"

	set := c.Compile([]vital.RuleDefinition{def})
	assert.Len(t, set.Single, 1)
}

func TestCompileEffectiveWeekdays(t *testing.T) {
	def := singleRuleDef(1)
	def.EffectiveWeekdays = []int{6, 7} // weekend only

	// midweekAfternoon is a Wednesday.
	set := testCompiler(midweekAfternoon).Compile([]vital.RuleDefinition{def})
	assert.True(t, set.Empty())

	sunday := time.Date(2026, 8, 30, 15, 0, 0, 0, time.Local)
	set = testCompiler(sunday).Compile([]vital.RuleDefinition{def})
	assert.Len(t, set.Single, 1)
}

func TestCompileComposite(t *testing.T) {
	c := testCompiler(midweekAfternoon)
	def := vital.RuleDefinition{
		ID:       10,
		Category: "COMPOSITE",
		Enabled:  true,
		ConditionExpression: `{
			"logical_operator": "OR",
			"conditions": [
				{"physical_sign": "heart_rate", "operator": ">", "threshold": 100},
				{"physical_sign": "blood_oxygen", "operator": "<", "threshold": 90, "duration_seconds": 60}
			]
		}`,
	}

	set := c.Compile([]vital.RuleDefinition{def})
	require.Len(t, set.Composite, 1)
	rule := set.Composite[0]
	assert.Equal(t, vital.LogicalOr, rule.Logical)
	require.Len(t, rule.Conditions, 2)
	assert.Equal(t, "heart_rate", rule.Conditions[0].PhysicalSign)
	assert.Equal(t, vital.OpGreater, rule.Conditions[0].Operator)
	assert.Equal(t, 100.0, rule.Conditions[0].Threshold)
	// A condition needs sign, operator and threshold; duration_seconds is
	// optional and defaults to 0 (point-in-time).
	assert.Zero(t, rule.Conditions[0].DurationSeconds)
	assert.Equal(t, 60, rule.Conditions[1].DurationSeconds)
}

func TestCompileCompositeDefaultsToAnd(t *testing.T) {
	c := testCompiler(midweekAfternoon)
	def := vital.RuleDefinition{
		ID:       10,
		Category: "composite",
		Enabled:  true,
		ConditionExpression: `{"conditions": [
			{"physical_sign": "heart_rate", "operator": ">", "threshold": 100}
		]}`,
	}

	set := c.Compile([]vital.RuleDefinition{def})
	require.Len(t, set.Composite, 1)
	assert.Equal(t, vital.LogicalAnd, set.Composite[0].Logical)
}

func TestCompileCompositeDropsBadConditions(t *testing.T) {
	c := testCompiler(midweekAfternoon)
	def := vital.RuleDefinition{
		ID:       10,
		Category: "COMPOSITE",
		Enabled:  true,
		ConditionExpression: `{"conditions": [
			{"physical_sign": "", "operator": ">", "threshold": 1},
			{"physical_sign": "heart_rate", "operator": "~", "threshold": 1},
			{"physical_sign": "heart_rate", "operator": ">"},
			{"physical_sign": "heart_rate", "operator": ">", "threshold": 100}
		]}`,
	}

	set := c.Compile([]vital.RuleDefinition{def})
	require.Len(t, set.Composite, 1)
	assert.Len(t, set.Composite[0].Conditions, 1)
}

func TestCompileCompositeRejectedWhenNoConditionsSurvive(t *testing.T) {
	c := testCompiler(midweekAfternoon)
	tests := []struct {
		name string
		expr string
	}{
		{"empty expression", ""},
		{"invalid json", "{nope"},
		{"no conditions", `{"conditions": []}`},
		{"all conditions bad", `{"conditions": [{"operator": ">"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := vital.RuleDefinition{
				ID: 10, Category: "COMPOSITE", Enabled: true,
				ConditionExpression: tt.expr,
			}
			set := c.Compile([]vital.RuleDefinition{def})
			assert.True(t, set.Empty())
		})
	}
}

func TestCompilePreservesInputOrder(t *testing.T) {
	c := testCompiler(midweekAfternoon)
	defs := []vital.RuleDefinition{singleRuleDef(3), singleRuleDef(1), singleRuleDef(2)}

	set := c.Compile(defs)
	require.Len(t, set.Single, 3)
	assert.Equal(t, int64(3), set.Single[0].RuleID)
	assert.Equal(t, int64(1), set.Single[1].RuleID)
	assert.Equal(t, int64(2), set.Single[2].RuleID)
}
