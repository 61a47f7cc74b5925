package service

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"ai-shopping-be/internal/dto"
	"ai-shopping-be/internal/pkg/logger"
	"ai-shopping-be/internal/repository/memory"
	"ai-shopping-be/pkg/llm"
	"ai-shopping-be/pkg/shopping/extract"
	"ai-shopping-be/pkg/shopping/query"
	"ai-shopping-be/pkg/shopping/response"
	"ai-shopping-be/pkg/shopping/search"
	"ai-shopping-be/pkg/shopping/selector"
	"ai-shopping-be/pkg/shopping/suggest"
	"ai-shopping-be/pkg/store"
	"ai-shopping-be/pkg/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM answers each pipeline stage by recognizing its prompt.
type scriptedLLM struct {
	route string
}

func (f *scriptedLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return "", nil
}

func (f *scriptedLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	switch {
	case strings.Contains(prompt, "query classifier"):
		return `{"query_type": "` + f.route + `"}`, nil
	case strings.Contains(prompt, "search term and filter"):
		return `{"search_query": "겨울 코트", "search_parameters": {"color": "BLACK"}}`, nil
	case strings.Contains(prompt, "rank fashion products"):
		return `{"selected_indices": [0]}`, nil
	case strings.Contains(prompt, "returned no products"):
		return "죄송합니다, 조건에 맞는 상품이 없네요. 키워드를 바꿔보시겠어요?", nil
	case strings.Contains(prompt, "follow-up questions"):
		return `["다른 색상도 있나요?", "배송은 얼마나 걸리나요?"]`, nil
	default:
		return "코트 추천드립니다!", nil
	}
}

type scriptedScraper struct {
	html string
}

func (f *scriptedScraper) ScrapeHTML(context.Context, string) (string, error) {
	return f.html, nil
}

func (f *scriptedScraper) Search(context.Context, string, int) ([]string, error) {
	return nil, nil
}

type scriptedExtractor struct{}

func (f *scriptedExtractor) ExtractProduct(_ context.Context, productURL string) (*store.Product, error) {
	return &store.Product{Name: "울 싱글 코트", Price: 129000, ProductURL: productURL}, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

var _ logger.ILogger = nopLogger{}

func newTestChatService(t *testing.T, route, scrapedHTML string) (IChatService, store.SessionStore) {
	t.Helper()

	pipelineLogger := log.New(io.Discard, "", 0)
	model := &scriptedLLM{route: route}
	sessions := memory.NewSessionRepository()

	pipeline := Pipeline{
		Classifier: query.NewClassifier(model, pipelineLogger),
		Optimizer:  query.NewOptimizer(model, pipelineLogger),
		Searcher: search.NewOrchestrator(
			&scriptedScraper{html: scrapedHTML},
			"https://www.musinsa.com", "/search/musinsa/goods", "musinsa.com",
			pipelineLogger,
		),
		LinkFilter: search.NewLinkFilter("musinsa.com", 5),
		Extractor:  extract.NewEngine(&scriptedExtractor{}, 5, pipelineLogger),
		Selector:   selector.NewSelector(model, pipelineLogger),
		Responder:  response.NewGenerator(model, pipelineLogger),
		Suggester:  suggest.NewGenerator(model, pipelineLogger),
	}

	engine := workflow.NewEngine(sessions, pipelineLogger)
	svc, err := NewChatService(sessions, pipeline, nil, nil, nopLogger{}, engine)
	require.NoError(t, err)
	return svc, sessions
}

func TestChatGeneralTurn(t *testing.T) {
	svc, sessions := newTestChatService(t, store.RouteGeneral, "")

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "코트 세탁은 어떻게 해?"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.SessionID, "session id assigned when omitted")
	assert.Equal(t, "코트 추천드립니다!", res.Response)
	assert.Empty(t, res.Products)
	assert.Nil(t, res.SearchMetadata)
	assert.Len(t, res.SuggestedQuestions, 2)

	state, err := sessions.Load(context.Background(), res.SessionID)
	require.NoError(t, err)
	require.NotNil(t, state, "turn is checkpointed")
	assert.Len(t, state.History, 2)
	assert.Equal(t, store.RoleAssistant, state.History[1].Role)
}

func TestChatSearchTurn(t *testing.T) {
	svc, sessions := newTestChatService(t, store.RouteSearchRequired,
		`<a href="/products/111">coat</a>`)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "겨울 코트 찾아줘"})
	require.NoError(t, err)

	require.Len(t, res.Products, 1)
	assert.Equal(t, "울 싱글 코트", res.Products[0].Name)
	assert.Equal(t, "코트 추천드립니다!", res.Response)
	require.NotNil(t, res.SearchMetadata)
	assert.Equal(t, search.MethodDirect, res.SearchMetadata["search_method"])

	state, err := sessions.Load(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, store.RouteSearchRequired, state.Route)
	assert.Equal(t, "겨울 코트", state.SearchQuery)
}

func TestChatSearchWithNoResults(t *testing.T) {
	svc, _ := newTestChatService(t, store.RouteSearchRequired, "")

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "없는 상품 찾아줘"})
	require.NoError(t, err)

	assert.Empty(t, res.Products)
	assert.Equal(t, "죄송합니다, 조건에 맞는 상품이 없네요. 키워드를 바꿔보시겠어요?", res.Response)
	assert.NotEmpty(t, res.SuggestedQuestions)
}

func TestChatKeepsHistoryAcrossTurns(t *testing.T) {
	svc, sessions := newTestChatService(t, store.RouteGeneral, "")

	first, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "첫 번째 질문입니다"})
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), &dto.ChatRequest{SessionID: first.SessionID, Message: "두 번째 질문입니다"})
	require.NoError(t, err)

	state, err := sessions.Load(context.Background(), first.SessionID)
	require.NoError(t, err)
	assert.Len(t, state.History, 4)
}

func TestSessionLifecycle(t *testing.T) {
	svc, _ := newTestChatService(t, store.RouteGeneral, "")

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "안녕하세요"})
	require.NoError(t, err)

	got, err := svc.GetSession(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Len(t, got.History, 2)

	list, err := svc.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.SessionID, list[0].SessionID)

	require.NoError(t, svc.DeleteSession(context.Background(), res.SessionID))

	_, err = svc.GetSession(context.Background(), res.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = svc.DeleteSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
