package response

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-shopping-be/pkg/llm"
	"ai-shopping-be/pkg/store"
)

// apologyMessage is the static fallback when generation itself failed
// on a search turn.
const apologyMessage = "죄송합니다. 요청하신 상품을 찾지 못했습니다. " +
	"다른 키워드나 조건으로 다시 검색해 보시겠어요?"

const generalFallbackMessage = "죄송합니다. 지금은 답변을 드리기 어렵습니다. " +
	"잠시 후 다시 시도해 주세요."

// Generator produces the final assistant answer. Search turns get a
// recommendation grounded in the extracted products, or a generated
// no-results reply when the search came up empty; general turns get a
// conversational reply over the session history.
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

// Generate never fails; on model errors it degrades to the most recent
// assistant message, then to a static message appropriate for the route.
func (g *Generator) Generate(ctx context.Context, state *store.TurnState) string {
	var prompt string
	var fallback string
	switch {
	case len(state.Products) > 0:
		prompt = g.buildRecommendationPrompt(state)
		fallback = apologyMessage
	case state.Route == store.RouteSearchRequired:
		prompt = g.buildNoResultsPrompt(state)
		fallback = apologyMessage
	default:
		prompt = g.buildGeneralPrompt(state)
		fallback = generalFallbackMessage
	}

	answer, err := g.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.7))
	if err != nil {
		g.logger.Printf("[RESPOND] LLM call failed, using fallback: %v", err)
		return fallbackAnswer(state, fallback)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fallbackAnswer(state, fallback)
	}
	return answer
}

// fallbackAnswer scans the history backward for the most recent
// non-empty assistant message before settling on the static text, so a
// model outage mid-session still surfaces something grounded in the
// conversation.
func fallbackAnswer(state *store.TurnState, static string) string {
	for i := len(state.History) - 1; i >= 0; i-- {
		msg := state.History[i]
		if msg.Role == store.RoleAssistant && strings.TrimSpace(msg.Content) != "" {
			return msg.Content
		}
	}
	return static
}

func (g *Generator) buildRecommendationPrompt(state *store.TurnState) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are a friendly Korean fashion shopping assistant.\n")
	prompt.WriteString("Recommend the products below to the user in Korean. For each product\n")
	prompt.WriteString("mention the name, price and what makes it a good fit for the request.\n")
	prompt.WriteString("Only talk about the products given; never invent details.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString(fmt.Sprintf("<request>\n%s\n</request>\n\n", state.LastUserMessage()))

	prompt.WriteString("<products>\n")
	for i, p := range state.Products {
		prompt.WriteString(fmt.Sprintf("%d. %s\n", i+1, p.Name))
		prompt.WriteString(fmt.Sprintf("   price: %.0f won\n", p.Price))
		if p.OriginalPrice > p.Price {
			prompt.WriteString(fmt.Sprintf("   original price: %.0f won\n", p.OriginalPrice))
		}
		if p.DiscountInfo != "" {
			prompt.WriteString("   discount: " + p.DiscountInfo + "\n")
		}
		if p.ShippingInfo != "" {
			prompt.WriteString("   shipping: " + p.ShippingInfo + "\n")
		}
		if p.SizeInfo != "" {
			prompt.WriteString("   sizes: " + p.SizeInfo + "\n")
		}
		if p.Rating > 0 {
			prompt.WriteString(fmt.Sprintf("   rating: %.1f (%d reviews)\n", p.Rating, p.ReviewCount))
		}
		if len(p.Colors) > 0 {
			prompt.WriteString("   colors: " + strings.Join(p.Colors, ", ") + "\n")
		}
		prompt.WriteString("   url: " + p.ProductURL + "\n")
	}
	prompt.WriteString("</products>")

	return prompt.String()
}

func (g *Generator) buildNoResultsPrompt(state *store.TurnState) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are a friendly Korean fashion shopping assistant.\n")
	prompt.WriteString("The catalog search for the user's request returned no products.\n")
	prompt.WriteString("Apologize briefly in Korean and suggest how to adjust the search,\n")
	prompt.WriteString("for example different keywords, a wider price range or another\n")
	prompt.WriteString("category. Never invent products.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString(fmt.Sprintf("<request>\n%s\n</request>", state.LastUserMessage()))

	if state.SearchQuery != "" {
		prompt.WriteString(fmt.Sprintf("\n\n<search_query>\n%s\n</search_query>", state.SearchQuery))
	}

	return prompt.String()
}

func (g *Generator) buildGeneralPrompt(state *store.TurnState) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are a friendly Korean fashion shopping assistant.\n")
	prompt.WriteString("Answer the user's latest message in Korean, using the conversation\n")
	prompt.WriteString("for context. Keep the answer short and practical.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<conversation>\n")
	for _, msg := range state.History {
		prompt.WriteString(msg.Role)
		prompt.WriteString(": ")
		prompt.WriteString(msg.Content)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</conversation>")

	return prompt.String()
}
