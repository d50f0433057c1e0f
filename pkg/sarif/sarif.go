package sarif

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/praetorian-inc/policyscan/pkg/types"
)

// SARIF 2.1.0 constants
const (
	SchemaURI   = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	Version     = "2.1.0"
	ToolName    = "policyscan"
	ToolVersion = "0.1.0"
)

// Report is the top-level SARIF report structure
type Report struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

// Run represents a single invocation of the tool
type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

// Tool describes the analysis tool
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver contains tool metadata
type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Rules   []Rule `json:"rules,omitempty"`
}

// Rule represents a detection rule
type Rule struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	ShortDescription ShortDescription `json:"shortDescription"`
}

// ShortDescription contains rule description text
type ShortDescription struct {
	Text string `json:"text"`
}

// Result represents a single finding
type Result struct {
	RuleID     string         `json:"ruleId"`
	Level      string         `json:"level"`
	Message    Message        `json:"message"`
	Locations  []Location     `json:"locations"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Message contains the result message
type Message struct {
	Text string `json:"text"`
}

// Location describes where a result was found
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation specifies file location
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

// ArtifactLocation identifies the file
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region specifies the line range
type Region struct {
	StartLine int      `json:"startLine"`
	EndLine   int      `json:"endLine"`
	Snippet   *Snippet `json:"snippet,omitempty"`
}

// Snippet contains the matched text
type Snippet struct {
	Text string `json:"text"`
}

// NewReport creates a new SARIF report with initialized structure
func NewReport() *Report {
	return &Report{
		Schema:  SchemaURI,
		Version: Version,
		Runs: []Run{
			{
				Tool: Tool{
					Driver: Driver{
						Name:    ToolName,
						Version: ToolVersion,
						Rules:   []Rule{},
					},
				},
				Results: []Result{},
			},
		},
	}
}

// AddRule adds a detection rule to the report. Rules sharing a check ID
// are reported once.
func (r *Report) AddRule(rule *types.Rule) {
	driver := &r.Runs[0].Tool.Driver
	for _, existing := range driver.Rules {
		if existing.ID == rule.RuleID {
			return
		}
	}
	driver.Rules = append(driver.Rules, Rule{
		ID:   rule.RuleID,
		Name: rule.Name,
		ShortDescription: ShortDescription{
			Text: rule.Name,
		},
	})
}

// AddResult adds a finding to the report.
// Verified findings are reported at error level.
func (r *Report) AddResult(f *types.Finding, withSnippet bool) {
	region := Region{
		StartLine: f.Location.Line,
		EndLine:   f.Location.Line,
	}
	if withSnippet {
		region.Snippet = &Snippet{Text: f.Value}
	}

	level := "warning"
	if f.Verified {
		level = "error"
	}

	r.Runs[0].Results = append(r.Runs[0].Results, Result{
		RuleID: f.RuleID,
		Level:  level,
		Message: Message{
			Text: f.RuleName,
		},
		Locations: []Location{
			{
				PhysicalLocation: PhysicalLocation{
					ArtifactLocation: ArtifactLocation{
						URI: formatFileURI(f.Location.Filename),
					},
					Region: region,
				},
			},
		},
		Properties: map[string]any{
			"findingId": f.ID,
			"verified":  f.Verified,
		},
	})
}

// FromFindings builds a report with one rule entry per distinct check ID.
func FromFindings(findings []*types.Finding, withSnippet bool) *Report {
	report := NewReport()
	for _, f := range findings {
		report.AddRule(&types.Rule{Name: f.RuleName, RuleID: f.RuleID})
		report.AddResult(f, withSnippet)
	}
	return report
}

// ToJSON serializes the report to JSON bytes
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// formatFileURI converts a file path to SARIF URI format
// Absolute paths get file:// prefix, relative paths stay as-is
func formatFileURI(path string) string {
	if filepath.IsAbs(path) {
		path = filepath.ToSlash(path)
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return "file://" + path
	}
	return filepath.ToSlash(path)
}
