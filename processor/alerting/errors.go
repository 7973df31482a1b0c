package alerting

import (
	"fmt"

	"github.com/c360/vitalstream/errors"
)

// Compilation error constructors. These all classify as Invalid: a
// malformed rule is a configuration problem, never a reason to retry.

func errMissingSign(ruleID int64) error {
	return errors.WrapInvalid(errors.ErrMissingSign, "Compiler", "compileSingle",
		fmt.Sprintf("rule %d has no physical sign", ruleID))
}

func errEmptyExpression(ruleID int64) error {
	return errors.WrapInvalid(errors.ErrInvalidRule, "Compiler", "compileComposite",
		fmt.Sprintf("rule %d has an empty condition expression", ruleID))
}

func errBadExpression(ruleID int64, cause error) error {
	return errors.WrapInvalid(errors.ErrInvalidCondition, "Compiler", "compileComposite",
		fmt.Sprintf("rule %d condition expression is not valid JSON: %v", ruleID, cause))
}

func errNoConditions(ruleID int64) error {
	return errors.WrapInvalid(errors.ErrInvalidCondition, "Compiler", "compileComposite",
		fmt.Sprintf("rule %d has no usable conditions", ruleID))
}
