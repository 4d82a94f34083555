package types

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

func (r MessageRole) Valid() bool {
	return r == MessageRoleUser || r == MessageRoleAssistant
}

// Message is one turn in a chat. Conversation order is defined by
// created_at, not by insertion order.
type Message struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID    uuid.UUID   `gorm:"type:uuid;not null;index;column:chat_id" json:"chat_id"`
	Role      MessageRole `gorm:"type:varchar(16);not null;column:role" json:"role"`
	Content   string      `gorm:"type:text;not null;column:content" json:"content"`
	CreatedAt time.Time   `gorm:"not null" json:"created_at"`
}

func (Message) TableName() string {
	return "message"
}
