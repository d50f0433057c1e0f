package resolver

import (
	"sync"

	"github.com/praetorian-inc/policyscan/pkg/types"
)

// Cache holds resolved rule sets per tenant for the life of the process.
// Entries are never evicted. Concurrent Puts for one tenant are
// last-write-wins.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]*types.Rule
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]*types.Rule)}
}

// Get returns the tenant's rules, or nil when absent or tenantID is empty.
func (c *Cache) Get(tenantID string) []*types.Rule {
	rules, _ := c.Lookup(tenantID)
	return rules
}

// Lookup is Get that also reports whether an entry exists, so a cached empty
// rule set can be told apart from a miss.
func (c *Cache) Lookup(tenantID string) ([]*types.Rule, bool) {
	if tenantID == "" {
		return nil, false
	}
	c.mu.RLock()
	rules, ok := c.entries[tenantID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return types.CloneRules(rules), true
}

// Put stores rules for tenantID, replacing any previous entry. Empty tenant
// IDs are ignored.
func (c *Cache) Put(tenantID string, rules []*types.Rule) {
	if tenantID == "" {
		return
	}
	stored := types.CloneRules(rules)
	c.mu.Lock()
	c.entries[tenantID] = stored
	c.mu.Unlock()
}

// Len returns the number of cached tenants.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Tenants returns the cached tenant IDs.
func (c *Cache) Tenants() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	return ids
}
