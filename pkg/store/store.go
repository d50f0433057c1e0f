// Package store persists findings across scans.
package store

import (
	"fmt"

	"github.com/praetorian-inc/policyscan/pkg/types"
)

// Store provides persistence for scan results.
type Store interface {
	// AddRule records a rule that was active during the scan.
	AddRule(r *types.Rule) error

	// AddFinding stores a finding, deduplicated by finding ID.
	AddFinding(f *types.Finding) error

	// GetFindings retrieves all findings in insertion order.
	GetFindings() ([]*types.Finding, error)

	// FindingExists checks if a finding with this ID exists.
	FindingExists(id string) (bool, error)

	// Close releases the underlying resources.
	Close() error
}

// Config for store initialization.
type Config struct {
	// Path is the database file path.
	// Use ":memory:" for a process-local store.
	Path string
}

// New returns a MemoryStore for ":memory:" and a SQLite store otherwise.
func New(cfg Config) (Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if cfg.Path == ":memory:" {
		return NewMemory(), nil
	}
	return NewSQLite(cfg.Path)
}
