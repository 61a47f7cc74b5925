package memory

import (
	"context"
	"time"

	"ai-shopping-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps session state in process memory. Sessions
// idle for an hour expire; the sweep runs every ten minutes.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		cache: cache.New(1*time.Hour, 10*time.Minute),
	}
}

func (r *SessionRepository) Load(_ context.Context, sessionID string) (*store.TurnState, error) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.TurnState), nil
	}
	return nil, nil
}

func (r *SessionRepository) Save(_ context.Context, state *store.TurnState) error {
	r.cache.Set(state.SessionID, state, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}

func (r *SessionRepository) List(_ context.Context) ([]string, error) {
	items := r.cache.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	return ids, nil
}
