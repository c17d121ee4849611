package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// EnsureCollection creates the collection if it does not already exist.
// Existing collections are left untouched, so startup stays idempotent.
func (c *Client) EnsureCollection(ctx context.Context, cfg CollectionConfig) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return fmt.Errorf("client is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	exists, err := c.collectionExists(ctx, cfg.Name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = c.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: cfg.Name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", cfg.Name, err)
	}

	return nil
}

// RecreateCollection drops the collection if present and creates it fresh.
// Used by forced reindexing.
func (c *Client) RecreateCollection(ctx context.Context, cfg CollectionConfig) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return fmt.Errorf("client is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	exists, err := c.collectionExists(ctx, cfg.Name)
	if err != nil {
		return err
	}
	if exists {
		if err := c.client.DeleteCollection(ctx, cfg.Name); err != nil {
			return fmt.Errorf("failed to delete collection %s: %w", cfg.Name, err)
		}
	}

	err = c.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: cfg.Name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", cfg.Name, err)
	}

	return nil
}

// CollectionExists reports whether the named collection exists.
func (c *Client) CollectionExists(ctx context.Context, name string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false, fmt.Errorf("client is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	return c.collectionExists(ctx, name)
}

func (c *Client) collectionExists(ctx context.Context, name string) (bool, error) {
	collections, err := c.client.ListCollections(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list collections: %w", err)
	}

	for _, coll := range collections {
		if coll == name {
			return true, nil
		}
	}

	return false, nil
}
