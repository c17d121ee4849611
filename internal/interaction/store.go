// Package interaction persists the append-only log of question/answer
// interactions in SQLite.
package interaction

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/legalqa/legal-rag/internal/pkg/errors"
	"github.com/legalqa/legal-rag/internal/pkg/logger"
)

// Record is one logged interaction. Timestamps are stored in UTC.
type Record struct {
	ID              int64     `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	UserQuery       string    `json:"user_query"`
	RetrievedFAQIDs []string  `json:"retrieved_faq_ids"`
	AIResponse      string    `json:"ai_response"`
	ResponseTimeMS  int64     `json:"response_time_ms"`
	RelevanceScores []float32 `json:"relevance_scores"`
	ErrorOccurred   bool      `json:"error_occurred"`
}

// Stats summarizes the interaction log.
type Stats struct {
	TotalQueries        int64   `json:"total_queries"`
	AverageResponseTime float64 `json:"avg_response_time_ms"`
	TotalErrors         int64   `json:"total_errors"`
}

// Store is a SQLite-backed interaction log. Rows are only ever inserted,
// never updated or deleted.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS interactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	user_query TEXT NOT NULL,
	retrieved_faq_ids TEXT NOT NULL,
	ai_response TEXT NOT NULL,
	response_time_ms INTEGER NOT NULL,
	relevance_scores TEXT NOT NULL,
	error_occurred INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_interactions_timestamp ON interactions(timestamp);
`

// NewStore opens (creating if needed) the SQLite database at path and
// ensures the schema exists. Parent directories are created as needed.
func NewStore(path string, log *logger.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite handles one writer at a time; serialize access through a
	// single connection instead of relying on busy retries.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Store{
		db:  db,
		log: log.WithComponent("interaction"),
	}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one interaction to the log.
func (s *Store) Record(ctx context.Context, rec Record) error {
	ids, err := json.Marshal(emptyIfNil(rec.RetrievedFAQIDs))
	if err != nil {
		return apperrors.LoggingError("encoding faq ids", err)
	}
	scores, err := json.Marshal(emptyScoresIfNil(rec.RelevanceScores))
	if err != nil {
		return apperrors.LoggingError("encoding relevance scores", err)
	}

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO interactions
			(timestamp, user_query, retrieved_faq_ids, ai_response, response_time_ms, relevance_scores, error_occurred)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ts.UTC().Format(time.RFC3339Nano),
		rec.UserQuery,
		string(ids),
		rec.AIResponse,
		rec.ResponseTimeMS,
		string(scores),
		boolToInt(rec.ErrorOccurred),
	)
	if err != nil {
		return apperrors.LoggingError("inserting interaction", err)
	}

	return nil
}

// ListRecent returns the most recent interactions, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, user_query, retrieved_faq_ids, ai_response, response_time_ms, relevance_scores, error_occurred
		FROM interactions
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.LoggingError("querying interactions", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var (
			rec       Record
			ts        string
			ids       string
			scores    string
			errorFlag int
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.UserQuery, &ids, &rec.AIResponse, &rec.ResponseTimeMS, &scores, &errorFlag); err != nil {
			return nil, apperrors.LoggingError("scanning interaction row", err)
		}

		rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, apperrors.LoggingError("parsing interaction timestamp", err)
		}
		if err := json.Unmarshal([]byte(ids), &rec.RetrievedFAQIDs); err != nil {
			return nil, apperrors.LoggingError("decoding faq ids", err)
		}
		if err := json.Unmarshal([]byte(scores), &rec.RelevanceScores); err != nil {
			return nil, apperrors.LoggingError("decoding relevance scores", err)
		}
		rec.ErrorOccurred = errorFlag != 0

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.LoggingError("iterating interactions", err)
	}

	return records, nil
}

// GetStats returns aggregate statistics over the whole log. The average
// response time is rounded to two decimal places and is zero when the log
// is empty.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats

	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(ROUND(AVG(response_time_ms), 2), 0),
			COALESCE(SUM(error_occurred), 0)
		FROM interactions`)
	if err := row.Scan(&stats.TotalQueries, &stats.AverageResponseTime, &stats.TotalErrors); err != nil {
		return Stats{}, apperrors.LoggingError("querying statistics", err)
	}

	return stats, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyScoresIfNil(s []float32) []float32 {
	if s == nil {
		return []float32{}
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
