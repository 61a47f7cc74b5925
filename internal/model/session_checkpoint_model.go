package model

import (
	"time"

	"gorm.io/datatypes"
)

// SessionCheckpoint persists the full turn state of one session as a
// JSON document, written after every completed workflow run.
type SessionCheckpoint struct {
	SessionID string         `gorm:"primaryKey;type:varchar(64)"`
	State     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SessionCheckpoint) TableName() string {
	return "session_checkpoints"
}
