package validator

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/praetorian-inc/policyscan/pkg/types"
)

// ValidationCache caches validation results by secret value.
// Key is SHA256(secret_value) so raw secrets are not kept as map keys.
type ValidationCache struct {
	results map[string]*types.ValidationResult
	mu      sync.RWMutex
}

// NewValidationCache creates a new validation cache.
func NewValidationCache() *ValidationCache {
	return &ValidationCache{
		results: make(map[string]*types.ValidationResult),
	}
}

// Get retrieves a cached result for the given secret.
// Returns nil if not found.
func (c *ValidationCache) Get(secret string) *types.ValidationResult {
	key := computeCacheKey(secret)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.results[key]
}

// Set stores a validation result for the given secret.
func (c *ValidationCache) Set(secret string, result *types.ValidationResult) {
	key := computeCacheKey(secret)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[key] = result
}

// Len returns the number of cached results.
func (c *ValidationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// computeCacheKey returns SHA256 hash of secret as hex string.
func computeCacheKey(secret string) string {
	h := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(h[:])
}
