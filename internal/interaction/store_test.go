package interaction

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/legalqa/legal-rag/internal/pkg/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "interactions.db"), logger.Default())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := Record{
		UserQuery:       "What should I do after a car accident?",
		RetrievedFAQIDs: []string{"faq-001", "faq-002"},
		AIResponse:      "Call 911 and exchange information.",
		ResponseTimeMS:  421,
		RelevanceScores: []float32{0.91, 0.72},
	}
	if err := store.Record(ctx, rec); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	logs, err := store.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("len(logs) = %d, want 1", len(logs))
	}

	got := logs[0]
	if got.ID == 0 {
		t.Error("ID should be assigned")
	}
	if got.UserQuery != rec.UserQuery {
		t.Errorf("UserQuery = %s", got.UserQuery)
	}
	if len(got.RetrievedFAQIDs) != 2 || got.RetrievedFAQIDs[0] != "faq-001" {
		t.Errorf("RetrievedFAQIDs = %v", got.RetrievedFAQIDs)
	}
	if len(got.RelevanceScores) != 2 || got.RelevanceScores[1] != 0.72 {
		t.Errorf("RelevanceScores = %v", got.RelevanceScores)
	}
	if got.ErrorOccurred {
		t.Error("ErrorOccurred should be false")
	}
	if got.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestListRecentOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := Record{
			Timestamp:      base.Add(time.Duration(i) * time.Minute),
			UserQuery:      "query",
			AIResponse:     "answer",
			ResponseTimeMS: int64(i),
		}
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	logs, err := store.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("len(logs) = %d, want 3", len(logs))
	}

	// Newest first
	if logs[0].ResponseTimeMS != 4 || logs[1].ResponseTimeMS != 3 || logs[2].ResponseTimeMS != 2 {
		t.Errorf("unexpected order: %d %d %d",
			logs[0].ResponseTimeMS, logs[1].ResponseTimeMS, logs[2].ResponseTimeMS)
	}
}

func TestListRecentDefaultLimit(t *testing.T) {
	store := newTestStore(t)

	logs, err := store.ListRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("len(logs) = %d, want 0", len(logs))
	}
}

func TestGetStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Empty log
	stats, err := store.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.TotalQueries != 0 || stats.TotalErrors != 0 || stats.AverageResponseTime != 0 {
		t.Errorf("empty stats = %+v", stats)
	}

	records := []Record{
		{UserQuery: "q1", AIResponse: "a1", ResponseTimeMS: 100},
		{UserQuery: "q2", AIResponse: "a2", ResponseTimeMS: 200},
		{UserQuery: "q3", AIResponse: "Error: boom", ResponseTimeMS: 33, ErrorOccurred: true},
	}
	for _, rec := range records {
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	stats, err = store.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.TotalQueries != 3 {
		t.Errorf("TotalQueries = %d, want 3", stats.TotalQueries)
	}
	if stats.TotalErrors != 1 {
		t.Errorf("TotalErrors = %d, want 1", stats.TotalErrors)
	}
	if stats.AverageResponseTime != 111.0 {
		t.Errorf("AverageResponseTime = %f, want 111.0", stats.AverageResponseTime)
	}
}

func TestRecordNilSlices(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := Record{
		UserQuery:     "q",
		AIResponse:    "Error: embedding provider unreachable",
		ErrorOccurred: true,
	}
	if err := store.Record(ctx, rec); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	logs, err := store.ListRecent(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if logs[0].RetrievedFAQIDs == nil || len(logs[0].RetrievedFAQIDs) != 0 {
		t.Errorf("RetrievedFAQIDs = %v, want empty slice", logs[0].RetrievedFAQIDs)
	}
	if !logs[0].ErrorOccurred {
		t.Error("ErrorOccurred should round-trip")
	}
}
