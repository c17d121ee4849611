package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/legalqa/legal-rag/internal/faq"
	"github.com/legalqa/legal-rag/internal/openai"
	"github.com/legalqa/legal-rag/internal/pkg/logger"
)

type fakeChat struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	var resp openai.ChatCompletionResponse
	resp.Choices = append(resp.Choices, struct {
		Message openai.Message `json:"message"`
	}{Message: openai.Message{Role: "assistant", Content: f.content}})
	return resp, nil
}

func sampleRetrieved() []faq.Retrieved {
	return []faq.Retrieved{
		{
			FAQID:           "faq-001",
			Question:        "What should I do after a car accident?",
			Answer:          "Call 911, exchange information, and see a doctor.",
			Category:        "Personal Injury",
			SimilarityScore: 0.91,
		},
		{
			FAQID:           "faq-002",
			Question:        "How long do I have to file a claim?",
			Answer:          "It depends on the statute of limitations.",
			Category:        "Personal Injury",
			SimilarityScore: 0.72,
		},
	}
}

func TestComposeUsesLLM(t *testing.T) {
	api := &fakeChat{content: "You should call 911 first."}
	c := NewComposer(api, "gpt-4-turbo-preview", 0.7, 500, logger.Default())

	answer := c.Compose(context.Background(), "What should I do after a crash?", sampleRetrieved())

	if answer != "You should call 911 first." {
		t.Errorf("answer = %s", answer)
	}
	if api.lastReq.Model != "gpt-4-turbo-preview" {
		t.Errorf("model = %s", api.lastReq.Model)
	}
	if len(api.lastReq.Messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(api.lastReq.Messages))
	}
	if api.lastReq.Messages[0].Role != "system" {
		t.Errorf("first message role = %s, want system", api.lastReq.Messages[0].Role)
	}
	system := api.lastReq.Messages[0].Content
	if !strings.Contains(system, "Use plain language that non-lawyers can understand") {
		t.Error("system prompt should ask for plain language")
	}
	if !strings.Contains(system, "general legal information, not legal advice") {
		t.Error("system prompt should carry the legal advice disclaimer")
	}

	user := api.lastReq.Messages[1].Content
	if !strings.Contains(user, "What should I do after a crash?") {
		t.Error("user prompt should contain the query")
	}
	if !strings.Contains(user, "Call 911, exchange information") {
		t.Error("user prompt should contain retrieved answers")
	}
}

func TestComposeNoResults(t *testing.T) {
	api := &fakeChat{content: "should not be called"}
	c := NewComposer(api, "m", 0.7, 500, logger.Default())

	answer := c.Compose(context.Background(), "question", nil)

	if answer != NoResultsAnswer {
		t.Errorf("answer = %s, want NoResultsAnswer", answer)
	}
	if api.lastReq.Model != "" {
		t.Error("LLM should not be called when nothing was retrieved")
	}
}

func TestComposeFallbackOnError(t *testing.T) {
	api := &fakeChat{err: errors.New("upstream down")}
	c := NewComposer(api, "m", 0.7, 500, logger.Default())

	retrieved := sampleRetrieved()
	answer := c.Compose(context.Background(), "question", retrieved)

	if !strings.Contains(answer, "Based on our FAQ database:") {
		t.Errorf("answer = %s, want fallback", answer)
	}
	if !strings.Contains(answer, retrieved[0].Answer) {
		t.Error("fallback should contain the best match answer")
	}
	if !strings.Contains(answer, "AI generation temporarily unavailable") {
		t.Error("fallback should note the degraded mode")
	}
}

func TestComposeFallbackOnEmptyContent(t *testing.T) {
	api := &fakeChat{content: "   "}
	c := NewComposer(api, "m", 0.7, 500, logger.Default())

	answer := c.Compose(context.Background(), "question", sampleRetrieved())

	if !strings.Contains(answer, "Based on our FAQ database:") {
		t.Errorf("answer = %s, want fallback", answer)
	}
}

func TestFallbackDeterministic(t *testing.T) {
	retrieved := sampleRetrieved()

	first := Fallback(retrieved)
	second := Fallback(retrieved)
	if first != second {
		t.Error("fallback must be deterministic")
	}

	if !strings.Contains(first, retrieved[0].Answer) {
		t.Error("fallback uses the highest scoring FAQ")
	}
	if strings.Contains(first, retrieved[1].Answer) {
		t.Error("fallback should only use the best match")
	}
}

func TestFallbackEmpty(t *testing.T) {
	answer := Fallback(nil)
	if !strings.Contains(answer, "unable to provide an answer at this time") {
		t.Errorf("answer = %s", answer)
	}
}

func TestFormatContext(t *testing.T) {
	got := FormatContext(sampleRetrieved())

	if !strings.Contains(got, "Here are the relevant FAQs from our database:") {
		t.Error("missing context header")
	}
	if !strings.Contains(got, "FAQ 1 (Category: Personal Injury, Relevance: 0.91):") {
		t.Errorf("missing first entry header in:\n%s", got)
	}
	if !strings.Contains(got, "FAQ 2 (Category: Personal Injury, Relevance: 0.72):") {
		t.Error("missing second entry header")
	}
	if !strings.Contains(got, "Question: What should I do after a car accident?") {
		t.Error("missing question line")
	}
}

func TestFormatContextEmpty(t *testing.T) {
	if got := FormatContext(nil); got != "No relevant FAQs were found in the database." {
		t.Errorf("FormatContext(nil) = %s", got)
	}
}
