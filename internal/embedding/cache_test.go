package embedding

import (
	"context"
	"testing"
)

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemoryCache(10)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Error("expected miss for unknown key")
	}

	c.Set(ctx, "what is a tort?", []float32{0.1, 0.2, 0.3})

	vec, ok := c.Get(ctx, "what is a tort?")
	if !ok {
		t.Fatal("expected hit")
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("vec = %v", vec)
	}
}

func TestMemoryCacheCopies(t *testing.T) {
	c := NewMemoryCache(10)
	ctx := context.Background()

	orig := []float32{1, 2, 3}
	c.Set(ctx, "q", orig)
	orig[0] = 99

	vec, _ := c.Get(ctx, "q")
	if vec[0] != 1 {
		t.Error("Set should copy the vector")
	}

	vec[1] = 99
	vec2, _ := c.Get(ctx, "q")
	if vec2[1] != 2 {
		t.Error("Get should return a copy")
	}
}

func TestMemoryCacheEviction(t *testing.T) {
	c := NewMemoryCache(2)
	ctx := context.Background()

	c.Set(ctx, "a", []float32{1})
	c.Set(ctx, "b", []float32{2})
	c.Set(ctx, "c", []float32{3}) // evicts a

	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("expected oldest entry to be evicted")
	}
	if _, ok := c.Get(ctx, "c"); !ok {
		t.Error("expected newest entry to be present")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestMemoryCacheLRUOrder(t *testing.T) {
	c := NewMemoryCache(2)
	ctx := context.Background()

	c.Set(ctx, "a", []float32{1})
	c.Set(ctx, "b", []float32{2})

	// Touch a so b becomes the eviction candidate
	c.Get(ctx, "a")

	c.Set(ctx, "c", []float32{3})

	if _, ok := c.Get(ctx, "a"); !ok {
		t.Error("recently used entry should survive eviction")
	}
	if _, ok := c.Get(ctx, "b"); ok {
		t.Error("least recently used entry should be evicted")
	}
}
