package types

import (
	"time"

	"github.com/google/uuid"
)

type ChatVisibility string

const (
	ChatVisibilityPrivate ChatVisibility = "private"
	ChatVisibilityPublic  ChatVisibility = "public"
)

func (v ChatVisibility) Valid() bool {
	return v == ChatVisibilityPrivate || v == ChatVisibilityPublic
}

type Chat struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Title      string         `gorm:"not null;column:title" json:"title"`
	Visibility ChatVisibility `gorm:"type:varchar(16);not null;default:private;column:visibility" json:"visibility"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
}

func (Chat) TableName() string {
	return "chat"
}
