package scanner

import "github.com/praetorian-inc/policyscan/pkg/types"

// LineItem is one line submitted for scanning.
type LineItem struct {
	Filename   string             `json:"filename"`
	Line       string             `json:"line"`
	LineNumber int                `json:"line_number"`
	Context    *types.LineContext `json:"context,omitempty"`
	Tenant     string             `json:"tenant,omitempty"` // empty selects the default tenant
}

// ScanResult represents scan results for a single line
type ScanResult struct {
	Filename   string           `json:"filename"`
	LineNumber int              `json:"line_number"`
	Findings   []*types.Finding `json:"findings"`
}

// BatchScanResult represents batch scan results
type BatchScanResult struct {
	Results []ScanResult `json:"results"`
	Total   int          `json:"total"`
}

// RulesResult lists the rules resolved for a tenant.
type RulesResult struct {
	Tenant string        `json:"tenant"`
	Rules  []*types.Rule `json:"rules"`
}
