package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"ai-shopping-be/internal/dto"
	"ai-shopping-be/internal/pkg/logger"
	"ai-shopping-be/pkg/events"
	pktNats "ai-shopping-be/pkg/nats"
	"ai-shopping-be/pkg/shopping/extract"
	"ai-shopping-be/pkg/shopping/query"
	"ai-shopping-be/pkg/shopping/response"
	"ai-shopping-be/pkg/shopping/search"
	"ai-shopping-be/pkg/shopping/selector"
	"ai-shopping-be/pkg/shopping/suggest"
	"ai-shopping-be/pkg/store"
	"ai-shopping-be/pkg/workflow"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.GetSessionResponse, error)
	ListSessions(ctx context.Context) ([]dto.SessionSummary, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Pipeline bundles the stage components the chat workflow runs.
type Pipeline struct {
	Classifier *query.Classifier
	Optimizer  *query.Optimizer
	Searcher   *search.Orchestrator
	LinkFilter *search.LinkFilter
	Extractor  *extract.Engine
	Selector   *selector.Selector
	Responder  *response.Generator
	Suggester  *suggest.Generator
}

type chatService struct {
	engine    *workflow.Engine
	sessions  store.SessionStore
	pipeline  Pipeline
	publisher IPublisherService
	natsPub   *pktNats.Publisher
	sysLogger logger.ILogger

	// One turn per session at a time. Lock entries are small and
	// sessions expire, so the map is never pruned.
	mu           sync.Mutex
	sessionLocks map[string]*sync.Mutex
}

func NewChatService(
	sessions store.SessionStore,
	pipeline Pipeline,
	publisher IPublisherService,
	natsPub *pktNats.Publisher,
	sysLogger logger.ILogger,
	engine *workflow.Engine,
) (IChatService, error) {
	s := &chatService{
		engine:       engine,
		sessions:     sessions,
		pipeline:     pipeline,
		publisher:    publisher,
		natsPub:      natsPub,
		sysLogger:    sysLogger,
		sessionLocks: make(map[string]*sync.Mutex),
	}

	s.buildGraph()
	if err := engine.Validate(); err != nil {
		return nil, fmt.Errorf("workflow graph invalid: %w", err)
	}

	engine.OnStep = s.publishStepProgress
	return s, nil
}

// Routing labels used by branching steps.
const (
	routeNoLinks    = "no_links"
	routeNoProducts = "no_products"
)

// buildGraph wires the step handlers and transitions:
//
//	analyze_query -> handle_general_query -> generate_suggested_questions
//	             \-> optimize_search_query -> search_products
//	                 -> filter_product_links -> extract_product_data
//	                    -> validate_and_select -> generate_final_response
//	                    -> generate_suggested_questions -> end
//
// Empty link or product sets shortcut straight to the final response.
func (s *chatService) buildGraph() {
	e := s.engine

	e.Register(workflow.StepAnalyzeQuery, s.analyzeQuery)
	e.Register(workflow.StepHandleGeneralQuery, s.handleGeneralQuery)
	e.Register(workflow.StepOptimizeSearchQuery, s.optimizeSearchQuery)
	e.Register(workflow.StepSearchProducts, s.searchProducts)
	e.Register(workflow.StepFilterProductLinks, s.filterProductLinks)
	e.Register(workflow.StepExtractProductData, s.extractProductData)
	e.Register(workflow.StepValidateAndSelect, s.validateAndSelect)
	e.Register(workflow.StepGenerateFinalResponse, s.generateFinalResponse)
	e.Register(workflow.StepGenerateSuggestedQuestions, s.generateSuggestedQuestions)

	e.AddTransition(workflow.StepAnalyzeQuery, store.RouteSearchRequired, workflow.StepOptimizeSearchQuery)
	e.AddTransition(workflow.StepAnalyzeQuery, workflow.DefaultRoute, workflow.StepHandleGeneralQuery)

	e.AddTransition(workflow.StepHandleGeneralQuery, workflow.DefaultRoute, workflow.StepGenerateSuggestedQuestions)

	e.AddTransition(workflow.StepOptimizeSearchQuery, workflow.DefaultRoute, workflow.StepSearchProducts)
	e.AddTransition(workflow.StepSearchProducts, workflow.DefaultRoute, workflow.StepFilterProductLinks)

	e.AddTransition(workflow.StepFilterProductLinks, routeNoLinks, workflow.StepGenerateFinalResponse)
	e.AddTransition(workflow.StepFilterProductLinks, workflow.DefaultRoute, workflow.StepExtractProductData)

	e.AddTransition(workflow.StepExtractProductData, routeNoProducts, workflow.StepGenerateFinalResponse)
	e.AddTransition(workflow.StepExtractProductData, workflow.DefaultRoute, workflow.StepValidateAndSelect)

	e.AddTransition(workflow.StepValidateAndSelect, workflow.DefaultRoute, workflow.StepGenerateFinalResponse)
	e.AddTransition(workflow.StepGenerateFinalResponse, workflow.DefaultRoute, workflow.StepGenerateSuggestedQuestions)
	e.AddTransition(workflow.StepGenerateSuggestedQuestions, workflow.DefaultRoute, workflow.StepEnd)
}

// --- Step handlers ---

func (s *chatService) analyzeQuery(ctx context.Context, state *store.TurnState) (*store.Update, string, error) {
	route := s.pipeline.Classifier.Classify(ctx, state.History)
	return &store.Update{Route: store.String(route)}, route, nil
}

func (s *chatService) handleGeneralQuery(ctx context.Context, state *store.TurnState) (*store.Update, string, error) {
	answer := s.pipeline.Responder.Generate(ctx, state)
	return &store.Update{
		FinalAnswer:   store.String(answer),
		AppendHistory: []store.Message{{Role: store.RoleAssistant, Content: answer}},
	}, workflow.DefaultRoute, nil
}

func (s *chatService) optimizeSearchQuery(ctx context.Context, state *store.TurnState) (*store.Update, string, error) {
	optimized := s.pipeline.Optimizer.Optimize(ctx, state.LastUserMessage())
	return &store.Update{
		SearchQuery:      store.String(optimized.SearchQuery),
		SearchParameters: optimized.SearchParameters,
	}, workflow.DefaultRoute, nil
}

func (s *chatService) searchProducts(ctx context.Context, state *store.TurnState) (*store.Update, string, error) {
	result := s.pipeline.Searcher.Search(ctx, state.SearchQuery, state.SearchParameters)
	return &store.Update{
		RawResults:     result.URLs,
		SearchMetadata: result.Metadata,
	}, workflow.DefaultRoute, nil
}

func (s *chatService) filterProductLinks(_ context.Context, state *store.TurnState) (*store.Update, string, error) {
	links := s.pipeline.LinkFilter.Filter(state.RawResults)
	if len(links) == 0 {
		return nil, routeNoLinks, nil
	}
	return &store.Update{CandidateLinks: links}, workflow.DefaultRoute, nil
}

func (s *chatService) extractProductData(ctx context.Context, state *store.TurnState) (*store.Update, string, error) {
	products := s.pipeline.Extractor.ExtractAll(ctx, state.CandidateLinks)
	if len(products) == 0 {
		return nil, routeNoProducts, nil
	}
	return &store.Update{Products: products}, workflow.DefaultRoute, nil
}

func (s *chatService) validateAndSelect(ctx context.Context, state *store.TurnState) (*store.Update, string, error) {
	selected := s.pipeline.Selector.Select(ctx, state.LastUserMessage(), state.Products)
	return &store.Update{Products: selected}, workflow.DefaultRoute, nil
}

func (s *chatService) generateFinalResponse(ctx context.Context, state *store.TurnState) (*store.Update, string, error) {
	answer := s.pipeline.Responder.Generate(ctx, state)
	return &store.Update{
		FinalAnswer:   store.String(answer),
		AppendHistory: []store.Message{{Role: store.RoleAssistant, Content: answer}},
	}, workflow.DefaultRoute, nil
}

func (s *chatService) generateSuggestedQuestions(ctx context.Context, state *store.TurnState) (*store.Update, string, error) {
	questions := s.pipeline.Suggester.Generate(ctx, state)
	return &store.Update{Suggestions: questions}, workflow.DefaultRoute, nil
}

// --- Public API ---

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	unlock := s.lockSession(sessionID)
	defer unlock()

	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if state == nil {
		state = store.NewTurnState(sessionID)
	}
	state.BeginTurn(req.Message)

	if err := s.engine.Run(ctx, state, workflow.StepAnalyzeQuery); err != nil {
		s.sysLogger.Error("CHAT", "Workflow run failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil, err
	}

	s.publishTurnCompleted(ctx, state)

	resp := &dto.ChatResponse{
		SessionID:          sessionID,
		Response:           state.FinalAnswer,
		SuggestedQuestions: state.Suggestions,
	}
	if state.Route == store.RouteSearchRequired {
		resp.Products = state.Products
		resp.SearchMetadata = state.SearchMetadata
	}
	return resp, nil
}

func (s *chatService) GetSession(ctx context.Context, sessionID string) (*dto.GetSessionResponse, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrSessionNotFound
	}
	return &dto.GetSessionResponse{
		SessionID: state.SessionID,
		History:   state.History,
		Products:  state.Products,
	}, nil
}

func (s *chatService) ListSessions(ctx context.Context) ([]dto.SessionSummary, error) {
	ids, err := s.sessions.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.SessionSummary, 0, len(ids))
	for _, id := range ids {
		state, err := s.sessions.Load(ctx, id)
		if err != nil || state == nil {
			continue
		}
		summary := dto.SessionSummary{
			SessionID:    id,
			MessageCount: len(state.History),
			LastMessage:  state.LastUserMessage(),
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *chatService) DeleteSession(ctx context.Context, sessionID string) error {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	if state == nil {
		return ErrSessionNotFound
	}
	return s.sessions.Delete(ctx, sessionID)
}

// --- Internals ---

func (s *chatService) lockSession(sessionID string) func() {
	s.mu.Lock()
	lock, ok := s.sessionLocks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.sessionLocks[sessionID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// publishStepProgress pushes step events onto the in-process bus; the
// consumer forwards them to NATS. Failures are logged and swallowed.
func (s *chatService) publishStepProgress(sessionID string, step workflow.Step) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(dto.StepProgressMessage{
		SessionID: sessionID,
		Step:      string(step),
	})
	if err != nil {
		return
	}
	if err := s.publisher.Publish(context.Background(), payload); err != nil {
		s.sysLogger.Warn("CHAT", "Failed to publish step progress", map[string]interface{}{
			"session_id": sessionID,
			"step":       string(step),
			"error":      err.Error(),
		})
	}
}

func (s *chatService) publishTurnCompleted(ctx context.Context, state *store.TurnState) {
	if s.natsPub == nil {
		return
	}
	event := events.NewChatTurnCompletedEvent(state.SessionID, state.Route, len(state.Products))
	if err := s.natsPub.Publish(ctx, event); err != nil {
		s.sysLogger.Warn("CHAT", "Failed to publish turn completed event", map[string]interface{}{
			"session_id": state.SessionID,
			"error":      err.Error(),
		})
	}
}
