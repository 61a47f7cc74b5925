package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"ai-shopping-be/pkg/llm"
)

var errUnrecognizedRoute = errors.New("unrecognized route label")

// OptimizedQuery is the structured search intent extracted from free text
type OptimizedQuery struct {
	SearchQuery      string                 `json:"search_query"`
	SearchParameters map[string]interface{} `json:"search_parameters"`
}

// Optimizer turns the raw user message into a core search term plus
// filter parameters. On any failure it degrades to the literal user
// text with empty parameters rather than blocking the search path.
type Optimizer struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewOptimizer(llmProvider llm.LLMProvider, logger *log.Logger) *Optimizer {
	return &Optimizer{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Optimize never fails; the fallback is the raw text and no filters.
func (o *Optimizer) Optimize(ctx context.Context, userText string) *OptimizedQuery {
	fallback := &OptimizedQuery{
		SearchQuery:      userText,
		SearchParameters: map[string]interface{}{},
	}

	response, err := o.llmProvider.Generate(ctx, o.buildPrompt(userText), llm.WithTemperature(0.0))
	if err != nil {
		o.logger.Printf("[OPTIMIZE] LLM call failed, using raw query: %v", err)
		return fallback
	}

	jsonContent := extractJSON(response)
	if jsonContent == "" {
		o.logger.Printf("[OPTIMIZE] No JSON in response, using raw query")
		return fallback
	}

	var optimized OptimizedQuery
	if err := json.Unmarshal([]byte(jsonContent), &optimized); err != nil {
		o.logger.Printf("[OPTIMIZE] Parse failed, using raw query: %v", err)
		return fallback
	}

	if strings.TrimSpace(optimized.SearchQuery) == "" {
		optimized.SearchQuery = userText
	}
	if optimized.SearchParameters == nil {
		optimized.SearchParameters = map[string]interface{}{}
	}

	o.logger.Printf("[OPTIMIZE] Query: %q, parameters: %v", optimized.SearchQuery, optimized.SearchParameters)
	return &optimized
}

func (o *Optimizer) buildPrompt(userText string) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You convert a shopping request into a search term and filter parameters\n")
	prompt.WriteString("for a fashion e-commerce search.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<parameters>\n")
	prompt.WriteString("gender: \"M\" (men), \"F\" (women) or \"A\" (all, default)\n")
	prompt.WriteString("minPrice: minimum price in won, 0 when unspecified\n")
	prompt.WriteString("maxPrice: maximum price in won, 999999 when unspecified\n")
	prompt.WriteString("color: uppercase English color name (BLACK, WHITE, NAVY, ...), \"\" for any\n")
	prompt.WriteString("category: garment category when clearly stated, \"\" otherwise\n")
	prompt.WriteString("shoeSize: shoe size in mm, MUST be 0 unless the query is about shoes\n")
	prompt.WriteString("</parameters>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"search_query\": \"core product keywords\",\n")
	prompt.WriteString("  \"search_parameters\": {\"gender\": \"A\", \"minPrice\": 0, \"maxPrice\": 999999, \"color\": \"\", \"category\": \"\", \"shoeSize\": 0}\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>\n\n")

	prompt.WriteString(fmt.Sprintf("Query: %s", userText))

	return prompt.String()
}

// extractJSON pulls the outermost JSON object out of a model response
func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
