package embedding

import (
	"context"
	"sync"

	"github.com/legalqa/legal-rag/internal/pkg/hash"
)

// Cache stores query embeddings keyed by text. Implementations must treat
// failures as cache misses; the caller always falls through to the API.
type Cache interface {
	Get(ctx context.Context, text string) ([]float32, bool)
	Set(ctx context.Context, text string, vector []float32)
}

// MemoryCache is an in-process LRU embedding cache.
type MemoryCache struct {
	mu      sync.Mutex
	cache   map[string][]float32
	order   []string // LRU order, oldest first
	maxSize int
}

// NewMemoryCache creates a new in-memory embedding cache.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 10000
	}

	return &MemoryCache{
		cache:   make(map[string][]float32),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

// Get retrieves an embedding from cache.
func (c *MemoryCache) Get(_ context.Context, text string) ([]float32, bool) {
	key := hash.SHA256String(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	vec, ok := c.cache[key]
	if !ok {
		return nil, false
	}

	c.moveToEnd(key)

	// Return a copy to prevent external mutation
	out := make([]float32, len(vec))
	copy(out, vec)
	return out, true
}

// Set stores an embedding in cache, evicting the oldest entries at capacity.
func (c *MemoryCache) Set(_ context.Context, text string, vector []float32) {
	key := hash.SHA256String(text)

	vec := make([]float32, len(vector))
	copy(vec, vector)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.cache[key]; exists {
		c.cache[key] = vec
		c.moveToEnd(key)
		return
	}

	for len(c.cache) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.cache, oldest)
	}

	c.cache[key] = vec
	c.order = append(c.order, key)
}

// moveToEnd moves a key to the end of the LRU order (must hold lock).
func (c *MemoryCache) moveToEnd(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
}

// Size returns the current cache size.
func (c *MemoryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
