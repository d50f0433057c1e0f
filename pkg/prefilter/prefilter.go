package prefilter

import (
	"regexp/syntax"

	"github.com/cloudflare/ahocorasick"
	"github.com/praetorian-inc/policyscan/pkg/types"
)

// Prefilter uses Aho-Corasick for efficient keyword matching.
type Prefilter struct {
	matcher        *ahocorasick.Matcher
	keywords       []string                 // keyword at each index
	keywordRules   map[string][]*types.Rule // keyword -> rules needing it
	noKeywordRules []*types.Rule            // rules without keywords (always checked)
}

// New creates a prefilter from rules.
func New(rules []*types.Rule) *Prefilter {
	pf := &Prefilter{
		keywordRules:   make(map[string][]*types.Rule),
		noKeywordRules: make([]*types.Rule, 0),
	}

	keywordSet := make(map[string]bool)
	for _, rule := range rules {
		if len(rule.Keywords) == 0 {
			pf.noKeywordRules = append(pf.noKeywordRules, rule)
			continue
		}
		for _, keyword := range rule.Keywords {
			if !keywordSet[keyword] {
				keywordSet[keyword] = true
				pf.keywords = append(pf.keywords, keyword)
			}
			pf.keywordRules[keyword] = append(pf.keywordRules[keyword], rule)
		}
	}

	if len(pf.keywords) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(pf.keywords)
	}

	return pf
}

// Filter returns rules that might match content (keywords found OR no keywords defined).
// Rules without keywords come first, followed by keyword hits in the order
// the matcher reports them.
func (pf *Prefilter) Filter(content []byte) []*types.Rule {
	result := make([]*types.Rule, 0, len(pf.noKeywordRules))
	result = append(result, pf.noKeywordRules...)

	if pf.matcher == nil {
		return result
	}

	seenRules := make(map[*types.Rule]bool)
	for _, hit := range pf.matcher.Match(content) {
		keyword := pf.keywords[hit]
		for _, rule := range pf.keywordRules[keyword] {
			if !seenRules[rule] {
				seenRules[rule] = true
				result = append(result, rule)
			}
		}
	}

	return result
}

// KeywordCount returns the number of distinct keywords in the automaton.
func (pf *Prefilter) KeywordCount() int {
	return len(pf.keywords)
}

// LiteralKeywords derives the keywords a pattern requires: the literal text
// every match must begin with. Patterns that Go's regexp/syntax cannot parse
// (lookarounds, backreferences) or that have no case-sensitive literal prefix
// yield nil, which means the pattern is always run.
func LiteralKeywords(pattern string) []string {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil
	}
	prog, err := syntax.Compile(re.Simplify())
	if err != nil {
		return nil
	}
	prefix, _ := prog.Prefix()
	if prefix == "" {
		return nil
	}
	return []string{prefix}
}
