package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkarlin/chatdeck-backend/internal/logger"
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

type VoteRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, vote *types.Vote) (*types.Vote, error)
	ListByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) ([]*types.Vote, error)
	DeleteByChatIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) error
}

type voteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVoteRepo(db *gorm.DB, baseLog *logger.Logger) VoteRepo {
	return &voteRepo{db: db, log: baseLog.With("repo", "VoteRepo")}
}

// Upsert writes the vote, overwriting the direction when the
// (message_id, user_id) pair already voted. The unique index makes the
// one-vote rule a database guarantee rather than a policy intent.
func (vr *voteRepo) Upsert(ctx context.Context, tx *gorm.DB, vote *types.Vote) (*types.Vote, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_upvoted"}),
		}).
		Create(vote).Error; err != nil {
		return nil, err
	}
	return vote, nil
}

func (vr *voteRepo) ListByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) ([]*types.Vote, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	var results []*types.Vote
	if err := transaction.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (vr *voteRepo) DeleteByChatIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	if len(chatIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("chat_id IN ?", chatIDs).
		Delete(&types.Vote{}).Error
}
