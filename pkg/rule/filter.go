package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/praetorian-inc/policyscan/pkg/types"
)

// FilterConfig selects rules by check ID.
type FilterConfig struct {
	Include []string // regexes; when set only matching check IDs are kept
	Exclude []string // regexes; matching check IDs are dropped
}

// ParsePatterns splits a comma-separated flag value into trimmed patterns.
func ParsePatterns(patterns string) []string {
	if patterns == "" {
		return []string{}
	}

	parts := strings.Split(patterns, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Filter applies include patterns, then exclude patterns, to the rules'
// check IDs. An empty include list keeps everything.
func Filter(rules []*types.Rule, config FilterConfig) ([]*types.Rule, error) {
	if len(rules) == 0 {
		return rules, nil
	}

	include, err := compileAll(config.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compileAll(config.Exclude)
	if err != nil {
		return nil, err
	}

	filtered := make([]*types.Rule, 0, len(rules))
	for _, r := range rules {
		if len(include) > 0 && !matchesAny(r.RuleID, include) {
			continue
		}
		if matchesAny(r.RuleID, exclude) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	regexes := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		regexes = append(regexes, re)
	}
	return regexes, nil
}

func matchesAny(ruleID string, regexes []*regexp.Regexp) bool {
	for _, re := range regexes {
		if re.MatchString(ruleID) {
			return true
		}
	}
	return false
}
