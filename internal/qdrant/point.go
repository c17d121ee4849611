package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// UpsertPoints writes FAQ vectors into the collection. Point IDs are the
// stable positions of the entries in the dataset, so re-running the upsert
// overwrites rather than duplicates.
func (c *Client) UpsertPoints(ctx context.Context, collection string, payloads []FAQPayload, vectors [][]float32) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return fmt.Errorf("client is closed")
	}

	if len(payloads) != len(vectors) {
		return fmt.Errorf("payload/vector count mismatch: %d vs %d", len(payloads), len(vectors))
	}
	if len(payloads) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	points := make([]*qdrant.PointStruct, len(payloads))
	for i, p := range payloads {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(i)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: payloadToQdrant(p),
		}
	}

	_, err := c.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

// CountPoints returns the exact number of points in the collection.
// A missing collection counts as zero.
func (c *Client) CountPoints(ctx context.Context, collection string) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return 0, fmt.Errorf("client is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	exists, err := c.collectionExists(ctx, collection)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	count, err := c.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}

	return count, nil
}

func payloadToQdrant(p FAQPayload) map[string]*qdrant.Value {
	keywords := make([]any, len(p.Keywords))
	for i, kw := range p.Keywords {
		keywords[i] = kw
	}

	return qdrant.NewValueMap(map[string]any{
		"faq_id":   p.FAQID,
		"question": p.Question,
		"answer":   p.Answer,
		"category": p.Category,
		"keywords": keywords,
	})
}
