package finding

import "github.com/praetorian-inc/policyscan/pkg/types"

// Set accumulates findings, collapsing those with equal types.FindingKey.
// The first finding inserted for a key is kept. Iteration follows
// insertion order.
type Set struct {
	seen  map[types.FindingKey]struct{}
	items []*types.Finding
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{seen: make(map[types.FindingKey]struct{})}
}

// Add inserts f and reports whether it was new.
func (s *Set) Add(f *types.Finding) bool {
	if f == nil {
		return false
	}
	k := f.Key()
	if _, dup := s.seen[k]; dup {
		return false
	}
	s.seen[k] = struct{}{}
	s.items = append(s.items, f)
	return true
}

// Contains reports whether a finding with key k is present.
func (s *Set) Contains(k types.FindingKey) bool {
	_, ok := s.seen[k]
	return ok
}

// Len returns the number of distinct findings.
func (s *Set) Len() int {
	return len(s.items)
}

// Findings returns the findings in insertion order.
func (s *Set) Findings() []*types.Finding {
	return append([]*types.Finding(nil), s.items...)
}
