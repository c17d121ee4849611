// Package generation composes the final answer for a user question, either
// through the LLM or through a deterministic fallback built from the
// retrieved FAQ content.
package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/legalqa/legal-rag/internal/faq"
	"github.com/legalqa/legal-rag/internal/openai"
	"github.com/legalqa/legal-rag/internal/pkg/logger"
)

const systemPrompt = `You are a helpful legal information assistant. Your role is to provide clear, accurate answers based on the FAQ context provided.

Guidelines:
- Base your answer primarily on the provided FAQ context
- If the context doesn't fully answer the question, acknowledge what information is available
- Always include a disclaimer that this is general legal information, not legal advice
- Be concise but thorough
- Use plain language that non-lawyers can understand
- Suggest consulting with a qualified attorney for specific situations`

// NoResultsAnswer is returned when retrieval finds nothing above the
// similarity threshold. No LLM call is made in that case.
const NoResultsAnswer = "I couldn't find any relevant information in our FAQ database for your question. This might be outside the scope of our current knowledge base. Please consider rephrasing your question or consulting with a legal professional directly."

const emptyFallbackAnswer = "I apologize, but I'm unable to provide an answer at this time. Please try again later or consult with a legal professional."

// ChatAPI is the slice of the OpenAI client the composer depends on.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Composer turns a question and its retrieved FAQs into an answer. It never
// returns an error: when the LLM call fails it degrades to a deterministic
// answer built from the best-matching FAQ.
type Composer struct {
	api         ChatAPI
	model       string
	temperature float32
	maxTokens   int
	log         *logger.Logger
}

// NewComposer creates an answer composer.
func NewComposer(api ChatAPI, model string, temperature float32, maxTokens int, log *logger.Logger) *Composer {
	return &Composer{
		api:         api,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		log:         log.WithComponent("generation"),
	}
}

// Compose produces the answer text for a question given its retrieved FAQs.
func (c *Composer) Compose(ctx context.Context, query string, retrieved []faq.Retrieved) string {
	if len(retrieved) == 0 {
		return NoResultsAnswer
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(query, retrieved)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		c.log.WithError(err).Warn("answer generation failed, using fallback")
		return Fallback(retrieved)
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		c.log.Warn("answer generation returned empty content, using fallback")
		return Fallback(retrieved)
	}

	return answer
}

// Fallback builds a deterministic answer from the highest-scoring FAQ.
func Fallback(retrieved []faq.Retrieved) string {
	if len(retrieved) == 0 {
		return emptyFallbackAnswer
	}

	best := retrieved[0]
	return fmt.Sprintf("Based on our FAQ database:\n\n%s\n\nNote: This is general legal information from our FAQ database. For advice specific to your situation, please consult with a qualified attorney.\n\n(AI generation temporarily unavailable - showing direct FAQ match)", best.Answer)
}

// FormatContext renders the retrieved FAQs as the grounding context block
// given to the LLM.
func FormatContext(retrieved []faq.Retrieved) string {
	if len(retrieved) == 0 {
		return "No relevant FAQs were found in the database."
	}

	var b strings.Builder
	b.WriteString("Here are the relevant FAQs from our database:\n")
	for i, r := range retrieved {
		b.WriteString(fmt.Sprintf("\nFAQ %d (Category: %s, Relevance: %.2f):\n", i+1, r.Category, r.SimilarityScore))
		b.WriteString(fmt.Sprintf("Question: %s\n", r.Question))
		b.WriteString(fmt.Sprintf("Answer: %s\n", r.Answer))
	}
	return b.String()
}

func userPrompt(query string, retrieved []faq.Retrieved) string {
	return fmt.Sprintf("%s\n\nUser Question: %s\n\nPlease provide a helpful answer based on the FAQ context above. If the context doesn't fully address the question, acknowledge the limitations and recommend consulting with an attorney.", FormatContext(retrieved), query)
}
