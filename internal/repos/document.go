package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkarlin/chatdeck-backend/internal/logger"
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

type DocumentRepo interface {
	CreateRevision(ctx context.Context, tx *gorm.DB, doc *types.Document) (*types.Document, error)
	GetRevisionsByID(ctx context.Context, tx *gorm.DB, documentID uuid.UUID) ([]*types.Document, error)
	DeleteByIDAfterTimestamp(ctx context.Context, tx *gorm.DB, documentID uuid.UUID, after time.Time) ([]*types.Document, error)
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{db: db, log: baseLog.With("repo", "DocumentRepo")}
}

// CreateRevision appends a new revision row; existing rows for the same
// document id are never touched.
func (dr *documentRepo) CreateRevision(ctx context.Context, tx *gorm.DB, doc *types.Document) (*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	if err := transaction.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

// GetRevisionsByID returns the full revision history, oldest first. The
// last element is the current version.
func (dr *documentRepo) GetRevisionsByID(ctx context.Context, tx *gorm.DB, documentID uuid.UUID) ([]*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	var results []*types.Document
	if err := transaction.WithContext(ctx).
		Where("id = ?", documentID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteByIDAfterTimestamp removes every revision created strictly after
// the given instant and returns the removed rows. A timestamp equal to a
// revision's created_at leaves that revision intact.
func (dr *documentRepo) DeleteByIDAfterTimestamp(ctx context.Context, tx *gorm.DB, documentID uuid.UUID, after time.Time) ([]*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	var deleted []*types.Document
	err := transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		if err := inner.
			Where("id = ? AND created_at > ?", documentID, after).
			Find(&deleted).Error; err != nil {
			return err
		}
		if len(deleted) == 0 {
			return nil
		}
		return inner.
			Where("id = ? AND created_at > ?", documentID, after).
			Delete(&types.Document{}).Error
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
