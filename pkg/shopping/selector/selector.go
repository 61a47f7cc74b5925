package selector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ai-shopping-be/pkg/llm"
	"ai-shopping-be/pkg/store"
)

const maxSelected = 3

// Selector asks the model to rank extracted products against the user's
// request and keeps the best few. Ranking is advisory: on any failure
// the first products in extraction order are kept instead, so a bad
// model response never empties a successful extraction.
type Selector struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewSelector(llmProvider llm.LLMProvider, logger *log.Logger) *Selector {
	return &Selector{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

type rankingOutput struct {
	SelectedIndices []int `json:"selected_indices"`
}

// Select returns at most three products, best match first. Every
// non-empty set goes through ranking so irrelevant extractions can be
// dropped even when few candidates survived.
func (s *Selector) Select(ctx context.Context, userQuery string, products []store.Product) []store.Product {
	if len(products) == 0 {
		return nil
	}

	keep := len(products)
	if keep > maxSelected {
		keep = maxSelected
	}

	response, err := s.llmProvider.Generate(ctx, s.buildPrompt(userQuery, products), llm.WithTemperature(0.0))
	if err != nil {
		s.logger.Printf("[SELECT] LLM call failed, keeping first %d: %v", keep, err)
		return products[:keep]
	}

	indices, err := parseIndices(response, len(products))
	if err != nil {
		s.logger.Printf("[SELECT] Parse failed, keeping first %d: %v", keep, err)
		return products[:keep]
	}

	selected := make([]store.Product, 0, len(indices))
	for _, idx := range indices {
		selected = append(selected, products[idx])
	}

	s.logger.Printf("[SELECT] Kept %d of %d products", len(selected), len(products))
	return selected
}

func (s *Selector) buildPrompt(userQuery string, products []store.Product) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You rank fashion products against a shopping request.\n")
	prompt.WriteString("Judge relevance to the request first, then price and rating.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString(fmt.Sprintf("<request>\n%s\n</request>\n\n", userQuery))

	prompt.WriteString("<products>\n")
	for i, p := range products {
		prompt.WriteString(fmt.Sprintf("%d. %s | %.0f won", i, p.Name, p.Price))
		if p.Rating > 0 {
			prompt.WriteString(fmt.Sprintf(" | rating %.1f", p.Rating))
		}
		if p.DiscountInfo != "" {
			prompt.WriteString(" | " + p.DiscountInfo)
		}
		prompt.WriteString("\n")
	}
	prompt.WriteString("</products>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString(fmt.Sprintf("Respond with ONLY valid JSON listing up to %d indices, best first:\n", maxSelected))
	prompt.WriteString("{\"selected_indices\": [0, 2, 1]}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

// parseIndices validates the model's ranking: indices must be in range
// and are deduplicated; at most maxSelected survive.
func parseIndices(response string, count int) ([]int, error) {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")
	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var out rankingOutput
	if err := json.Unmarshal([]byte(response[startIdx:endIdx+1]), &out); err != nil {
		return nil, fmt.Errorf("unmarshal ranking: %w", err)
	}
	if len(out.SelectedIndices) == 0 {
		return nil, fmt.Errorf("empty ranking")
	}

	seen := make(map[int]bool)
	var indices []int
	for _, idx := range out.SelectedIndices {
		if idx < 0 || idx >= count || seen[idx] {
			continue
		}
		seen[idx] = true
		indices = append(indices, idx)
		if len(indices) >= maxSelected {
			break
		}
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("no valid indices in ranking")
	}
	return indices, nil
}
