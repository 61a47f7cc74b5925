package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ai-shopping-be/internal/model"
	"ai-shopping-be/pkg/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository checkpoints session state into Postgres. The state
// is one jsonb column keyed by session id; upsert keeps Save idempotent.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Load(ctx context.Context, sessionID string) (*store.TurnState, error) {
	var checkpoint model.SessionCheckpoint
	err := r.db.WithContext(ctx).First(&checkpoint, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", sessionID, err)
	}

	var state store.TurnState
	if err := json.Unmarshal(checkpoint.State, &state); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint %s: %w", sessionID, err)
	}
	return &state, nil
}

func (r *SessionRepository) Save(ctx context.Context, state *store.TurnState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal checkpoint %s: %w", state.SessionID, err)
	}

	checkpoint := model.SessionCheckpoint{
		SessionID: state.SessionID,
		State:     data,
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(&checkpoint).Error
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", state.SessionID, err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	err := r.db.WithContext(ctx).Delete(&model.SessionCheckpoint{}, "session_id = ?", sessionID).Error
	if err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", sessionID, err)
	}
	return nil
}

func (r *SessionRepository) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.SessionCheckpoint{}).Pluck("session_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	return ids, nil
}
