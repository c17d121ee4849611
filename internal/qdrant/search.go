package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// Search runs a dense similarity search against the collection and returns
// scored results ordered by descending similarity.
func (c *Client) Search(ctx context.Context, collection string, req SearchRequest) ([]SearchResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("client is closed")
	}

	if len(req.Vector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQueryDense(req.Vector),
		Limit:          qdrant.PtrOf(req.Limit),
		WithPayload:    qdrant.NewWithPayload(true),
		ScoreThreshold: req.ScoreThreshold,
	}

	if req.Category != "" {
		query.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{categoryCondition(req.Category)},
		}
	}

	points, err := c.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		results = append(results, SearchResult{
			ID:      pointID(point.GetId()),
			Score:   point.GetScore(),
			Payload: extractPayload(point.GetPayload()),
		})
	}

	return results, nil
}

func categoryCondition(category string) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: "category",
				Match: &qdrant.Match{
					MatchValue: &qdrant.Match_Keyword{Keyword: category},
				},
			},
		},
	}
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num)
	case *qdrant.PointId_Uuid:
		return v.Uuid
	default:
		return ""
	}
}

func extractPayload(payload map[string]*qdrant.Value) FAQPayload {
	return FAQPayload{
		FAQID:    getStringValue(payload, "faq_id"),
		Question: getStringValue(payload, "question"),
		Answer:   getStringValue(payload, "answer"),
		Category: getStringValue(payload, "category"),
		Keywords: getStringSliceValue(payload, "keywords"),
	}
}

func getStringValue(payload map[string]*qdrant.Value, key string) string {
	val, ok := payload[key]
	if !ok {
		return ""
	}
	if sv, ok := val.Kind.(*qdrant.Value_StringValue); ok {
		return sv.StringValue
	}
	return ""
}

func getStringSliceValue(payload map[string]*qdrant.Value, key string) []string {
	val, ok := payload[key]
	if !ok {
		return nil
	}
	lv, ok := val.Kind.(*qdrant.Value_ListValue)
	if !ok || lv.ListValue == nil {
		return nil
	}

	out := make([]string, 0, len(lv.ListValue.Values))
	for _, item := range lv.ListValue.Values {
		if sv, ok := item.Kind.(*qdrant.Value_StringValue); ok {
			out = append(out, sv.StringValue)
		}
	}
	return out
}
