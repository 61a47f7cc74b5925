package suggest

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-shopping-be/pkg/llm"
	"ai-shopping-be/pkg/store"
)

// Static fallbacks keep the UI populated when the model yields nothing
// parseable. The product-aware list assumes recommendations were shown.
var (
	productFallbackQuestions = []string{
		"이 상품의 배송은 얼마나 걸리나요?",
		"다른 색상도 있나요?",
		"비슷한 가격대의 다른 상품도 보여주세요",
		"사이즈는 어떻게 선택해야 하나요?",
	}
	generalFallbackQuestions = []string{
		"요즘 인기 있는 스타일이 뭔가요?",
		"겨울 코트 추천해 주세요",
		"10만원대 운동화 찾아주세요",
		"데일리룩으로 입기 좋은 옷 알려주세요",
	}
)

// Generator proposes follow-up questions the user might tap next. The
// model output goes through a chain of parsers; when none of them yields
// enough questions a static list keyed on whether products were shown
// is used.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewGenerator(llmProvider llm.LLMProvider, logger *log.Logger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Generate never fails and always returns a non-empty list.
func (g *Generator) Generate(ctx context.Context, state *store.TurnState) []string {
	hasProducts := len(state.Products) > 0

	response, err := g.llmProvider.Generate(ctx, g.buildPrompt(state), llm.WithTemperature(0.8))
	if err != nil {
		g.logger.Printf("[SUGGEST] LLM call failed, using static questions: %v", err)
		return fallbackQuestions(hasProducts)
	}

	questions := parseQuestions(response)
	if len(questions) < minQuestions {
		g.logger.Printf("[SUGGEST] Fewer than %d usable questions, using static questions", minQuestions)
		return fallbackQuestions(hasProducts)
	}

	g.logger.Printf("[SUGGEST] %d questions generated", len(questions))
	return questions
}

func (g *Generator) buildPrompt(state *store.TurnState) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You suggest short follow-up questions a shopper might ask next,\n")
	prompt.WriteString("in Korean. Base them on the conversation and any products shown.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString(fmt.Sprintf("<request>\n%s\n</request>\n\n", state.LastUserMessage()))

	if state.FinalAnswer != "" {
		prompt.WriteString(fmt.Sprintf("<answer>\n%s\n</answer>\n\n", state.FinalAnswer))
	}

	if len(state.Products) > 0 {
		prompt.WriteString("<products>\n")
		for _, p := range state.Products {
			prompt.WriteString(fmt.Sprintf("- %s (%.0f won)\n", p.Name, p.Price))
		}
		prompt.WriteString("</products>\n\n")
	}

	prompt.WriteString("<output_format>\n")
	prompt.WriteString(fmt.Sprintf("Respond with ONLY a JSON array of %d Korean questions:\n", maxQuestions))
	prompt.WriteString("[\"질문1\", \"질문2\", \"질문3\", \"질문4\"]\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func fallbackQuestions(hasProducts bool) []string {
	if hasProducts {
		return productFallbackQuestions
	}
	return generalFallbackQuestions
}
