package validator

import (
	"sync"
	"testing"

	"github.com/praetorian-inc/policyscan/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestValidationCache_GetSet(t *testing.T) {
	cache := NewValidationCache()
	assert.Nil(t, cache.Get("secret"))

	result := types.NewValidationResult(types.StatusValid, 1.0, "ok")
	cache.Set("secret", result)

	assert.Same(t, result, cache.Get("secret"))
	assert.Nil(t, cache.Get("other"))
	assert.Equal(t, 1, cache.Len())
}

func TestValidationCache_KeyIsHash(t *testing.T) {
	key := computeCacheKey("secret")
	assert.Len(t, key, 64)
	assert.NotContains(t, key, "secret")
	assert.Equal(t, key, computeCacheKey("secret"))
}

func TestValidationCache_Concurrent(t *testing.T) {
	cache := NewValidationCache()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := string(rune('a' + i%26))
			cache.Set(s, types.NewValidationResult(types.StatusValid, 1, ""))
			cache.Get(s)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 26, cache.Len())
}
