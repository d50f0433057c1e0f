package types

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
)

// Rule is a normalized detector rule: a named, identified regex pattern.
//
// The JSON field names match the local bundle format
// ({"Name": ..., "Check_ID": ..., "Regex": ...}).
type Rule struct {
	Name         string   `json:"Name"`     // display name, e.g. "AWS Key"
	RuleID       string   `json:"Check_ID"` // e.g. "CKV_SEC_1" or an incident ID
	Pattern      string   `json:"Regex"`    // regex source exactly as authored
	StructuralID string   `json:"-"`        // SHA-1 of pattern (computed)
	Keywords     []string `json:"-"`        // literals for Aho-Corasick prefiltering
}

// namedGroupRe matches named capture groups like (?P<name>...) so that two
// patterns differing only in group names hash identically.
var namedGroupRe = regexp.MustCompile(`\(\?P?<[^>]+>`)

// ComputeStructuralID computes SHA-1 of pattern with named capture groups
// normalized to plain groups.
func (r *Rule) ComputeStructuralID() string {
	normalized := namedGroupRe.ReplaceAllString(r.Pattern, "(")
	h := sha1.New()
	h.Write([]byte(normalized))
	return hex.EncodeToString(h.Sum(nil))
}

// CloneRules returns a shallow copy of rules with each Rule copied, so the
// caller may modify the result without touching the source.
func CloneRules(rules []*Rule) []*Rule {
	out := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		if r == nil {
			continue
		}
		c := *r
		if r.Keywords != nil {
			c.Keywords = append([]string(nil), r.Keywords...)
		}
		out = append(out, &c)
	}
	return out
}
