package types

import (
	"time"

	"github.com/google/uuid"
)

type DocumentKind string

const (
	DocumentKindText  DocumentKind = "text"
	DocumentKindCode  DocumentKind = "code"
	DocumentKindImage DocumentKind = "image"
)

func (k DocumentKind) Valid() bool {
	return k == DocumentKindText || k == DocumentKindCode || k == DocumentKindImage
}

// Document is one revision of a generated artifact. Revisions of the
// same artifact share ID and differ by CreatedAt; rows are appended on
// every save and never updated in place. The current version is the row
// with the latest CreatedAt.
type Document struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	CreatedAt time.Time    `gorm:"primaryKey;not null" json:"created_at"`
	ChatID    uuid.UUID    `gorm:"type:uuid;index;column:chat_id" json:"chat_id"`
	Title     string       `gorm:"not null;column:title" json:"title"`
	Content   string       `gorm:"type:text;column:content" json:"content"`
	Kind      DocumentKind `gorm:"type:varchar(16);not null;default:text;column:kind" json:"kind"`
	UserID    uuid.UUID    `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
}

func (Document) TableName() string {
	return "document"
}
