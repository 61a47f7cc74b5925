package store

import "context"

// SessionStore persists session state between turns. A missing session
// is not an error: Load returns (nil, nil) and the caller starts fresh.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*TurnState, error)
	Save(ctx context.Context, state *TurnState) error
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}
