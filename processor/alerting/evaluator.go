package alerting

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/c360/vitalstream/types/vital"
)

// categoryTask is one fan-out unit: a rule category evaluated against a
// single event.
type categoryTask struct {
	category vital.RuleCategory
	run      func() []vital.AlertResult
	results  chan []vital.AlertResult
}

// evaluator runs a compiled rule set against one measurement event. The
// three categories fan out as independent tasks on the shared worker
// pool and are joined under a single deadline; a category that misses
// the deadline is abandoned and contributes nothing to that call.
type evaluator struct {
	submit  func(task) error
	timeout time.Duration
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
	metrics *EngineMetrics
}

func newEvaluator(
	submit func(task) error,
	config *Config,
	now func() time.Time,
	newID func() string,
	logger *slog.Logger,
	metrics *EngineMetrics,
) *evaluator {
	if now == nil {
		now = time.Now
	}
	return &evaluator{
		submit:  submit,
		timeout: config.EvaluationTimeout,
		now:     now,
		newID:   newID,
		logger:  logger.With("component", "rule-evaluator"),
		metrics: metrics,
	}
}

// EvaluateAll evaluates every compiled rule against the event. Results
// are ordered by category (single, composite, complex) and, within a
// category, by compiled order.
func (e *evaluator) EvaluateAll(event vital.MeasurementEvent, set vital.CompiledRuleSet) []vital.AlertResult {
	tasks := e.fanOut(event, set)
	if len(tasks) == 0 {
		return []vital.AlertResult{}
	}

	// Join under one deadline shared across categories. A late task is
	// abandoned, not cancelled; its eventual result is simply discarded
	// into its buffered channel. A task that finished before the deadline
	// fired still contributes even when a sibling ran long.
	deadline := time.NewTimer(e.timeout)
	defer deadline.Stop()

	results := make([]vital.AlertResult, 0)
	expired := false
	for _, t := range tasks {
		if !expired {
			select {
			case r := <-t.results:
				results = append(results, r...)
				continue
			case <-deadline.C:
				expired = true
			}
		}
		if r, ok := e.drain(t); ok {
			results = append(results, r...)
		} else {
			e.abandon(t)
		}
	}
	return results
}

// drain collects a task's result without blocking. It reports false when
// the task has not completed yet.
func (e *evaluator) drain(t categoryTask) ([]vital.AlertResult, bool) {
	select {
	case r := <-t.results:
		return r, true
	default:
		return nil, false
	}
}

// fanOut submits one task per non-empty category. A task that cannot be
// scheduled (pool saturated or stopped) is treated like a timed-out one.
func (e *evaluator) fanOut(event vital.MeasurementEvent, set vital.CompiledRuleSet) []categoryTask {
	var tasks []categoryTask
	if len(set.Single) > 0 {
		tasks = append(tasks, categoryTask{
			category: vital.CategorySingle,
			run:      func() []vital.AlertResult { return e.evaluateSingle(event, set.Single) },
		})
	}
	if len(set.Composite) > 0 {
		tasks = append(tasks, categoryTask{
			category: vital.CategoryComposite,
			run:      func() []vital.AlertResult { return e.evaluateComposite(event, set.Composite) },
		})
	}
	if len(set.Complex) > 0 {
		tasks = append(tasks, categoryTask{
			category: vital.CategoryComplex,
			run:      func() []vital.AlertResult { return e.evaluateComplex(event, set.Complex) },
		})
	}

	submitted := tasks[:0]
	for _, t := range tasks {
		t.results = make(chan []vital.AlertResult, 1)
		run := t.run
		ch := t.results
		if err := e.submit(func(context.Context) error {
			ch <- run()
			return nil
		}); err != nil {
			e.logger.Warn("category evaluation not scheduled",
				"category", t.category, "error", err)
			e.recordTimeout(t.category)
			continue
		}
		submitted = append(submitted, t)
	}
	return submitted
}

func (e *evaluator) abandon(t categoryTask) {
	e.logger.Warn("category evaluation abandoned at deadline",
		"category", t.category, "timeout", e.timeout)
	e.recordTimeout(t.category)
}

func (e *evaluator) recordTimeout(category vital.RuleCategory) {
	if e.metrics != nil {
		e.metrics.categoryTimeouts.WithLabelValues(strings.ToLower(category.String())).Inc()
	}
}

// evaluateSingle checks each single-metric rule. The minimum bound is
// tested before the maximum; a value violating both reports "min".
func (e *evaluator) evaluateSingle(event vital.MeasurementEvent, rules []vital.CompiledSingleRule) []vital.AlertResult {
	results := make([]vital.AlertResult, 0)
	for _, rule := range rules {
		value, ok := event.SignValue(rule.PhysicalSign)
		if !ok {
			continue
		}

		var violation vital.ViolationKind
		switch {
		case rule.ThresholdMin != nil && value < *rule.ThresholdMin:
			violation = vital.ViolationMin
		case rule.ThresholdMax != nil && value > *rule.ThresholdMax:
			violation = vital.ViolationMax
		default:
			continue
		}

		v := value
		now := e.now()
		results = append(results, vital.AlertResult{
			ID:           e.newID(),
			RuleID:       rule.RuleID,
			RuleType:     vital.CategorySingle,
			PhysicalSign: rule.PhysicalSign,
			CurrentValue: &v,
			Violation:    violation,
			ThresholdMin: rule.ThresholdMin,
			ThresholdMax: rule.ThresholdMax,
			Severity:     rule.Severity,
			Message:      formatMessage(rule.MessageTemplate, event, &v, now),
			Channels:     rule.Channels,
			DeviceSN:     event.DeviceSN,
			CustomerID:   event.CustomerID,
			Timestamp:    now,
		})
		e.recordAlert(vital.CategorySingle, rule.Severity)
	}
	return results
}

// evaluateComposite checks each composite rule. A condition whose sign
// is missing from the event, or whose value does not parse, is false.
func (e *evaluator) evaluateComposite(event vital.MeasurementEvent, rules []vital.CompiledCompositeRule) []vital.AlertResult {
	results := make([]vital.AlertResult, 0)
	for _, rule := range rules {
		triggered, detail := e.evaluateConditions(event, rule)
		if !triggered {
			continue
		}

		now := e.now()
		results = append(results, vital.AlertResult{
			ID:                e.newID(),
			RuleID:            rule.RuleID,
			RuleType:          vital.CategoryComposite,
			PhysicalSign:      vital.CompositeSign,
			Violation:         vital.ViolationComposite,
			Severity:          rule.Severity,
			Message:           formatMessage(rule.MessageTemplate, event, nil, now),
			Channels:          rule.Channels,
			DeviceSN:          event.DeviceSN,
			CustomerID:        event.CustomerID,
			Timestamp:         now,
			EvaluationContext: detail,
		})
		e.recordAlert(vital.CategoryComposite, rule.Severity)
	}
	return results
}

// evaluateConditions combines a rule's conditions under its logical
// operator and builds the detail string listing satisfied conditions.
func (e *evaluator) evaluateConditions(event vital.MeasurementEvent, rule vital.CompiledCompositeRule) (bool, string) {
	anyTrue := false
	allTrue := true
	var satisfied []string

	for _, cond := range rule.Conditions {
		holds := false
		if value, ok := event.SignValue(cond.PhysicalSign); ok {
			result, known := cond.Operator.Apply(value, cond.Threshold)
			if !known {
				e.logger.Warn("unknown condition operator",
					"rule_id", rule.RuleID, "operator", cond.Operator)
			} else if result {
				holds = true
				satisfied = append(satisfied, cond.PhysicalSign+": "+
					formatNumber(value)+" "+string(cond.Operator)+" "+
					formatNumber(cond.Threshold))
			}
		}
		if holds {
			anyTrue = true
		} else {
			allTrue = false
		}
	}

	triggered := allTrue
	if rule.Logical == vital.LogicalOr {
		triggered = anyTrue
	}
	return triggered, strings.Join(satisfied, ", ")
}

// evaluateComplex is a stub; the category is reserved and never fires.
func (e *evaluator) evaluateComplex(_ vital.MeasurementEvent, _ []vital.CompiledComplexRule) []vital.AlertResult {
	return []vital.AlertResult{}
}

func (e *evaluator) recordAlert(category vital.RuleCategory, severity string) {
	if e.metrics != nil {
		e.metrics.alertsTriggered.WithLabelValues(strings.ToLower(category.String()), severity).Inc()
	}
}
