package faq

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Dataset is the on-disk FAQ bundle format.
type Dataset struct {
	FAQs []Item `json:"faqs"`
}

// LoadFile reads and validates a FAQ dataset from a JSON file.
func LoadFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading FAQ dataset: %w", err)
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parsing FAQ dataset: %w", err)
	}

	if err := validate(ds.FAQs); err != nil {
		return nil, err
	}

	return ds.FAQs, nil
}

func validate(items []Item) error {
	if len(items) == 0 {
		return fmt.Errorf("FAQ dataset is empty")
	}

	seen := make(map[string]bool, len(items))
	for i, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("FAQ at index %d has no id", i)
		}
		if seen[item.ID] {
			return fmt.Errorf("duplicate FAQ id: %s", item.ID)
		}
		seen[item.ID] = true

		if strings.TrimSpace(item.Question) == "" {
			return fmt.Errorf("FAQ %s has no question", item.ID)
		}
		if strings.TrimSpace(item.Answer) == "" {
			return fmt.Errorf("FAQ %s has no answer", item.ID)
		}
	}

	return nil
}

// Questions returns the question text of each item, in order. Used to build
// the batch embedding request at indexing time.
func Questions(items []Item) []string {
	questions := make([]string, len(items))
	for i, item := range items {
		questions[i] = item.Question
	}
	return questions
}
