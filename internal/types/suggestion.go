package types

import (
	"time"

	"github.com/google/uuid"
)

type SuggestionStatus string

const (
	SuggestionStatusPending   SuggestionStatus = "pending"
	SuggestionStatusApplied   SuggestionStatus = "applied"
	SuggestionStatusDismissed SuggestionStatus = "dismissed"
)

func (s SuggestionStatus) Valid() bool {
	return s == SuggestionStatusPending || s == SuggestionStatusApplied || s == SuggestionStatusDismissed
}

// Suggestion is an edit proposal against one document revision. Created
// by explicit user action and immutable apart from its status.
type Suggestion struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID        uuid.UUID        `gorm:"type:uuid;not null;index;column:document_id" json:"document_id"`
	DocumentCreatedAt time.Time        `gorm:"not null;column:document_created_at" json:"document_created_at"`
	MessageID         uuid.UUID        `gorm:"type:uuid;column:message_id" json:"message_id"`
	UserID            uuid.UUID        `gorm:"type:uuid;not null;column:user_id" json:"user_id"`
	OriginalText      string           `gorm:"type:text;column:original_text" json:"original_text"`
	SuggestedText     string           `gorm:"type:text;not null;column:suggested_text" json:"suggested_text"`
	Description       string           `gorm:"type:text;column:description" json:"description"`
	Status            SuggestionStatus `gorm:"type:varchar(16);not null;default:pending;column:status" json:"status"`
	CreatedAt         time.Time        `gorm:"not null" json:"created_at"`
}

func (Suggestion) TableName() string {
	return "suggestion"
}
