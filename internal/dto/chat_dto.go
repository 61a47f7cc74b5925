package dto

import "ai-shopping-be/pkg/store"

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" validate:"required"`
}

type ChatResponse struct {
	SessionID          string                 `json:"session_id"`
	Response           string                 `json:"response"`
	Products           []store.Product        `json:"products,omitempty"`
	SuggestedQuestions []string               `json:"suggested_questions"`
	SearchMetadata     map[string]interface{} `json:"search_metadata,omitempty"`
}

type SessionSummary struct {
	SessionID    string `json:"session_id"`
	MessageCount int    `json:"message_count"`
	LastMessage  string `json:"last_message,omitempty"`
}

type GetSessionResponse struct {
	SessionID string          `json:"session_id"`
	History   []store.Message `json:"history"`
	Products  []store.Product `json:"products,omitempty"`
}
