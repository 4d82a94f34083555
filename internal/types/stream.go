package types

import (
	"time"

	"github.com/google/uuid"
)

// Stream marks an in-flight assistant run against a chat. A marker is
// written when the run starts and cleared on completion, so a client
// reconnecting mid-run can detect and resume the interrupted stream.
type Stream struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID    uuid.UUID `gorm:"type:uuid;not null;index;column:chat_id" json:"chat_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Stream) TableName() string {
	return "stream"
}
