package types

import (
	"github.com/google/uuid"
)

// Vote is a thumbs up/down on a single assistant message. The composite
// unique index keeps at most one live vote per (message, user) pair;
// repeat votes overwrite in place.
type Vote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID    uuid.UUID `gorm:"type:uuid;not null;index;column:chat_id" json:"chat_id"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vote_message_user;column:message_id" json:"message_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vote_message_user;column:user_id" json:"user_id"`
	IsUpvoted bool      `gorm:"not null;column:is_upvoted" json:"is_upvoted"`
}

func (Vote) TableName() string {
	return "vote"
}
