package store

import (
	"sync"

	"github.com/praetorian-inc/policyscan/pkg/types"
)

// MemoryStore implements Store using in-memory data structures.
type MemoryStore struct {
	mu       sync.RWMutex
	rules    map[string]*types.Rule    // keyed by rule ID + structural ID
	findings map[string]*types.Finding // keyed by finding ID
	order    []string
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		rules:    make(map[string]*types.Rule),
		findings: make(map[string]*types.Finding),
	}
}

// AddRule stores a rule.
func (m *MemoryStore) AddRule(r *types.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *r
	m.rules[r.RuleID+"\x00"+r.StructuralID] = &c
	return nil
}

// AddFinding stores a finding (deduplicated).
func (m *MemoryStore) AddFinding(f *types.Finding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.findings[f.ID]; exists {
		return nil
	}
	c := *f
	m.findings[f.ID] = &c
	m.order = append(m.order, f.ID)
	return nil
}

// GetFindings retrieves all findings.
func (m *MemoryStore) GetFindings() ([]*types.Finding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.Finding, 0, len(m.order))
	for _, id := range m.order {
		c := *m.findings[id]
		result = append(result, &c)
	}
	return result, nil
}

// FindingExists checks if a finding with this ID exists.
func (m *MemoryStore) FindingExists(id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.findings[id]
	return exists, nil
}

// RuleCount returns the number of distinct rules recorded.
func (m *MemoryStore) RuleCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rules)
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}
