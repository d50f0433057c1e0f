package types

import (
	"encoding/hex"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Finding is one reported candidate secret occurrence.
type Finding struct {
	ID       string         `json:"id"` // xxhash of Key(), see ComputeFindingID
	RuleName string         `json:"rule_name"`
	RuleID   string         `json:"rule_id"`
	Location SourceLocation `json:"location"`
	Value    string         `json:"value"`
	Verified bool           `json:"verified"`
}

// FindingKey is the identity of a finding for deduplication. Two findings
// with equal keys are the same finding even if their RuleID differs.
type FindingKey struct {
	RuleName   string
	Filename   string
	Value      string
	LineNumber int
	Verified   bool
}

// Key returns the dedup key of f.
func (f *Finding) Key() FindingKey {
	return FindingKey{
		RuleName:   f.RuleName,
		Filename:   f.Location.Filename,
		Value:      f.Value,
		LineNumber: f.Location.Line,
		Verified:   f.Verified,
	}
}

// NewFinding builds a Finding and computes its ID.
func NewFinding(rule *Rule, filename string, lineNumber int, value string, verified bool) *Finding {
	f := &Finding{
		Location: SourceLocation{Filename: filename, Line: lineNumber},
		Value:    value,
		Verified: verified,
	}
	if rule != nil {
		f.RuleName = rule.Name
		f.RuleID = rule.RuleID
	}
	f.ID = ComputeFindingID(f.Key())
	return f
}

// ComputeFindingID computes a content-based finding ID.
// Format: xxhash64(rule_name + '\0' + filename + '\0' + value + '\0' + line + '\0' + verified)
func ComputeFindingID(k FindingKey) string {
	d := xxhash.New()
	d.WriteString(k.RuleName)
	d.Write([]byte{0})
	d.WriteString(k.Filename)
	d.Write([]byte{0})
	d.WriteString(k.Value)
	d.Write([]byte{0})
	d.WriteString(strconv.Itoa(k.LineNumber))
	d.Write([]byte{0})
	d.WriteString(strconv.FormatBool(k.Verified))
	return hex.EncodeToString(d.Sum(nil))
}
