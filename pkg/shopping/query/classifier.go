package query

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"ai-shopping-be/pkg/llm"
	"ai-shopping-be/pkg/store"
)

// Classifier decides whether a user message needs a catalog search or a
// plain conversational answer. It never returns an error: any failure
// falls back to the general route, because a failed search path costs
// far more calls than a direct answer.
type Classifier struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewClassifier(llmProvider llm.LLMProvider, logger *log.Logger) *Classifier {
	return &Classifier{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

type classificationOutput struct {
	QueryType string `json:"query_type"`
}

// Classify returns store.RouteSearchRequired or store.RouteGeneral.
func (c *Classifier) Classify(ctx context.Context, history []store.Message) string {
	prompt := c.buildPrompt(history)

	response, err := c.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		c.logger.Printf("[CLASSIFY] LLM call failed, defaulting to general: %v", err)
		return store.RouteGeneral
	}

	route, err := parseRoute(response)
	if err != nil {
		c.logger.Printf("[CLASSIFY] Parse failed, defaulting to general: %v", err)
		return store.RouteGeneral
	}

	c.logger.Printf("[CLASSIFY] Route: %s", route)
	return route
}

func (c *Classifier) buildPrompt(history []store.Message) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are a query classifier for a fashion shopping assistant.\n")
	prompt.WriteString("You do NOT answer questions. You only classify the latest user message.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<conversation>\n")
	for _, msg := range history {
		prompt.WriteString(msg.Role)
		prompt.WriteString(": ")
		prompt.WriteString(msg.Content)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</conversation>\n\n")

	prompt.WriteString("<definitions>\n")
	prompt.WriteString("search_required: the user is looking for products to browse or buy\n")
	prompt.WriteString("  (e.g. 'find me a long coat', 'show Nike sneakers under 100000 won')\n")
	prompt.WriteString("general: anything else - styling advice, follow-up chat, questions about\n")
	prompt.WriteString("  products already shown, greetings\n")
	prompt.WriteString("</definitions>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\"query_type\": \"search_required\"} or {\"query_type\": \"general\"}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func parseRoute(response string) (string, error) {
	jsonContent := extractJSON(response)
	if jsonContent != "" {
		var out classificationOutput
		if err := json.Unmarshal([]byte(jsonContent), &out); err == nil {
			switch strings.ToLower(strings.TrimSpace(out.QueryType)) {
			case store.RouteSearchRequired:
				return store.RouteSearchRequired, nil
			case store.RouteGeneral:
				return store.RouteGeneral, nil
			}
		}
	}

	// Lenient pass for models that answer with a bare label
	lower := strings.ToLower(response)
	if strings.Contains(lower, store.RouteSearchRequired) {
		return store.RouteSearchRequired, nil
	}
	if strings.Contains(lower, store.RouteGeneral) {
		return store.RouteGeneral, nil
	}
	return "", errUnrecognizedRoute
}
