package store

// Message is a single role-tagged entry in the conversation history
type Message struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// Role constants
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Route values set by query classification
const (
	RouteGeneral        = "general"
	RouteSearchRequired = "search_required"
)

// TurnState is the accumulating record for one conversation session.
// It is threaded through every workflow step and checkpointed between turns.
type TurnState struct {
	SessionID string `json:"session_id"`

	// Conversation
	History []Message `json:"history"`
	Route   string    `json:"route"`

	// Search phase
	SearchQuery      string                 `json:"search_query"`
	SearchParameters map[string]interface{} `json:"search_parameters"`
	RawResults       []string               `json:"raw_results"`
	CandidateLinks   []string               `json:"candidate_links"`
	SearchMetadata   map[string]interface{} `json:"search_metadata"`

	// Extraction / selection phase
	Products []Product `json:"products"`

	// Response phase
	FinalAnswer string   `json:"final_answer"`
	Suggestions []string `json:"suggestions"`

	// Workflow control / observability
	StepMarker string `json:"step_marker"`
}

// NewTurnState returns a fresh state for a session
func NewTurnState(sessionID string) *TurnState {
	return &TurnState{
		SessionID: sessionID,
	}
}

// Update is a partial state update produced by one workflow step.
// Scalar fields are pointers: nil means "not touched by this step".
type Update struct {
	AppendHistory []Message

	Route       *string
	SearchQuery *string
	FinalAnswer *string
	StepMarker  string

	SearchParameters map[string]interface{}
	RawResults       []string
	CandidateLinks   []string
	SearchMetadata   map[string]interface{}
	Products         []Product
	Suggestions      []string
}

// Apply merges a partial update into the state. The merge strategy is
// explicit per field:
//   - History is append-only.
//   - List/map fields replace the current value only when the incoming
//     value is non-empty, so a later step that does not touch a field
//     can never erase what an earlier step wrote.
//   - Scalar fields replace whenever the step set them (non-nil pointer).
//
// Consequence: a step cannot clear a non-empty list through a partial
// update; clearing happens only at turn boundaries via BeginTurn.
func (s *TurnState) Apply(u *Update) {
	if u == nil {
		return
	}

	if len(u.AppendHistory) > 0 {
		s.History = append(s.History, u.AppendHistory...)
	}

	if u.Route != nil {
		s.Route = *u.Route
	}
	if u.SearchQuery != nil {
		s.SearchQuery = *u.SearchQuery
	}
	if u.FinalAnswer != nil {
		s.FinalAnswer = *u.FinalAnswer
	}
	if u.StepMarker != "" {
		s.StepMarker = u.StepMarker
	}

	if len(u.SearchParameters) > 0 {
		s.SearchParameters = u.SearchParameters
	}
	if len(u.RawResults) > 0 {
		s.RawResults = u.RawResults
	}
	if len(u.CandidateLinks) > 0 {
		s.CandidateLinks = u.CandidateLinks
	}
	if len(u.SearchMetadata) > 0 {
		s.SearchMetadata = u.SearchMetadata
	}
	if len(u.Products) > 0 {
		s.Products = u.Products
	}
	if len(u.Suggestions) > 0 {
		s.Suggestions = u.Suggestions
	}
}

// BeginTurn records the incoming user message and clears the per-turn
// working fields. Only History survives across turns; earlier
// recommendations live on as assistant messages, so follow-up questions
// still have them in context without stale products leaking into a
// failed search turn.
func (s *TurnState) BeginTurn(userText string) {
	s.History = append(s.History, Message{Role: RoleUser, Content: userText})

	s.Route = ""
	s.Products = nil
	s.SearchQuery = ""
	s.SearchParameters = nil
	s.RawResults = nil
	s.CandidateLinks = nil
	s.SearchMetadata = nil
	s.FinalAnswer = ""
	s.Suggestions = nil
	s.StepMarker = ""
}

// LastUserMessage returns the content of the most recent user message,
// or "" when the history holds none.
func (s *TurnState) LastUserMessage() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleUser {
			return s.History[i].Content
		}
	}
	return ""
}

// String is a tiny helper for building scalar updates
func String(v string) *string {
	return &v
}
