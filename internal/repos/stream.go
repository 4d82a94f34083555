package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkarlin/chatdeck-backend/internal/logger"
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

type StreamRepo interface {
	Create(ctx context.Context, tx *gorm.DB, stream *types.Stream) (*types.Stream, error)
	LatestByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) (*types.Stream, error)
	DeleteByChatIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) error
}

type streamRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStreamRepo(db *gorm.DB, baseLog *logger.Logger) StreamRepo {
	return &streamRepo{db: db, log: baseLog.With("repo", "StreamRepo")}
}

func (sr *streamRepo) Create(ctx context.Context, tx *gorm.DB, stream *types.Stream) (*types.Stream, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if err := transaction.WithContext(ctx).Create(stream).Error; err != nil {
		return nil, err
	}
	return stream, nil
}

// LatestByChatID returns the newest marker for the chat, or nil when no
// stream is in flight.
func (sr *streamRepo) LatestByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) (*types.Stream, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var result types.Stream
	err := transaction.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *streamRepo) DeleteByChatIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if len(chatIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("chat_id IN ?", chatIDs).
		Delete(&types.Stream{}).Error
}
