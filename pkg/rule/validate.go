package rule

import (
	"fmt"

	"github.com/praetorian-inc/policyscan/pkg/matcher"
	"github.com/praetorian-inc/policyscan/pkg/types"
)

// ValidateRule checks a rule's required fields and that its pattern compiles
// the same way the matcher compiles it.
func ValidateRule(r *types.Rule) error {
	if r == nil {
		return fmt.Errorf("rule is nil")
	}
	if r.RuleID == "" {
		return fmt.Errorf("rule check ID is required")
	}
	if r.Name == "" {
		return fmt.Errorf("rule %s: name is required", r.RuleID)
	}
	if r.Pattern == "" {
		return fmt.Errorf("rule %s: pattern is required", r.RuleID)
	}

	if _, err := matcher.CompilePattern(r.Pattern, 0); err != nil {
		return fmt.Errorf("invalid pattern regex for rule %s: %w", r.RuleID, err)
	}

	expectedID := r.ComputeStructuralID()
	if r.StructuralID != "" && r.StructuralID != expectedID {
		return fmt.Errorf("rule %s has inconsistent StructuralID: got %s, expected %s",
			r.RuleID, r.StructuralID, expectedID)
	}
	return nil
}

// ValidateRules validates every rule and returns one error per invalid rule.
func ValidateRules(rules []*types.Rule) []error {
	var errs []error
	for _, r := range rules {
		if err := ValidateRule(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
