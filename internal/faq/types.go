// Package faq defines the FAQ knowledge base types shared across the service.
package faq

// Item is a single FAQ entry in the knowledge base. Items are immutable
// reference content: loaded once at startup and replaced only by reindexing.
type Item struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

// Retrieved is an FAQ item returned from vector search together with its
// cosine similarity score in [0, 1]. Results are ordered by descending score.
type Retrieved struct {
	FAQID           string  `json:"faq_id"`
	Question        string  `json:"question"`
	Answer          string  `json:"answer"`
	Category        string  `json:"category"`
	SimilarityScore float32 `json:"similarity_score"`
}
