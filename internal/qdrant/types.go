// Package qdrant provides a wrapper around the Qdrant Go client with
// simplified APIs for FAQ indexing and similarity search.
package qdrant

import (
	"time"
)

const (
	// DefaultHost is the default Qdrant host.
	DefaultHost = "localhost"

	// DefaultPort is the default Qdrant gRPC port.
	DefaultPort = 6334

	// DefaultTimeout is the default operation timeout.
	DefaultTimeout = 30 * time.Second
)

// ClientConfig holds configuration for the Qdrant client.
type ClientConfig struct {
	// Host is the Qdrant server host.
	Host string

	// Port is the Qdrant gRPC port.
	Port int

	// APIKey for authentication (optional).
	APIKey string

	// UseTLS enables TLS connection.
	UseTLS bool

	// Timeout for operations.
	Timeout time.Duration
}

// DefaultClientConfig returns sensible defaults for local development.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Host:    DefaultHost,
		Port:    DefaultPort,
		Timeout: DefaultTimeout,
	}
}

// CollectionConfig defines the configuration for creating a collection.
type CollectionConfig struct {
	// Name is the collection name.
	Name string

	// VectorSize is the embedding dimension (e.g. 1536).
	VectorSize uint64
}

// FAQPayload is the retrievable content stored alongside each vector.
type FAQPayload struct {
	FAQID    string   `json:"faq_id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

// SearchRequest defines parameters for a similarity search.
type SearchRequest struct {
	// Vector is the query embedding.
	Vector []float32

	// Limit is the maximum number of results to return.
	Limit uint64

	// ScoreThreshold drops results scoring below this value.
	ScoreThreshold *float32

	// Category restricts results to an exact category match when non-empty.
	Category string
}

// SearchResult represents a single scored point.
type SearchResult struct {
	// ID is the point identifier.
	ID string

	// Score is the cosine similarity score.
	Score float32

	// Payload contains the stored FAQ content.
	Payload FAQPayload
}
