package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkarlin/chatdeck-backend/internal/logger"
	"github.com/mkarlin/chatdeck-backend/internal/repos"
	"github.com/mkarlin/chatdeck-backend/internal/requestdata"
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

type CreateSuggestionInput struct {
	DocumentID    uuid.UUID
	MessageID     uuid.UUID
	OriginalText  string
	SuggestedText string
	Description   string
}

type SuggestionService interface {
	Create(ctx context.Context, input CreateSuggestionInput) (*types.Suggestion, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*types.Suggestion, error)
	Resolve(ctx context.Context, suggestionID uuid.UUID, status types.SuggestionStatus) error
}

type suggestionService struct {
	db             *gorm.DB
	log            *logger.Logger
	suggestionRepo repos.SuggestionRepo
	documentRepo   repos.DocumentRepo
}

func NewSuggestionService(db *gorm.DB, log *logger.Logger, suggestionRepo repos.SuggestionRepo, documentRepo repos.DocumentRepo) SuggestionService {
	return &suggestionService{
		db:             db,
		log:            log.With("service", "SuggestionService"),
		suggestionRepo: suggestionRepo,
		documentRepo:   documentRepo,
	}
}

// Create records an edit proposal against the document's current
// revision. Suggestions are immutable apart from status.
func (ss *suggestionService) Create(ctx context.Context, input CreateSuggestionInput) (*types.Suggestion, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, ErrUnauthorized
	}
	if input.SuggestedText == "" {
		return nil, fmt.Errorf("%w: suggested text required", ErrInvalidInput)
	}

	revisions, err := ss.documentRepo.GetRevisionsByID(ctx, nil, input.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch revisions: %w", err)
	}
	if len(revisions) == 0 {
		return nil, ErrNotFound
	}
	if revisions[0].UserID != rd.UserID {
		return nil, ErrForbidden
	}
	current := revisions[len(revisions)-1]

	suggestion := &types.Suggestion{
		ID:                uuid.New(),
		DocumentID:        input.DocumentID,
		DocumentCreatedAt: current.CreatedAt,
		MessageID:         input.MessageID,
		UserID:            rd.UserID,
		OriginalText:      input.OriginalText,
		SuggestedText:     input.SuggestedText,
		Description:       input.Description,
		Status:            types.SuggestionStatusPending,
		CreatedAt:         time.Now().UTC(),
	}
	if _, err := ss.suggestionRepo.Create(ctx, nil, []*types.Suggestion{suggestion}); err != nil {
		return nil, fmt.Errorf("failed to create suggestion: %w", err)
	}
	return suggestion, nil
}

func (ss *suggestionService) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*types.Suggestion, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, ErrUnauthorized
	}
	revisions, err := ss.documentRepo.GetRevisionsByID(ctx, nil, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch revisions: %w", err)
	}
	if len(revisions) == 0 {
		return nil, ErrNotFound
	}
	if revisions[0].UserID != rd.UserID {
		return nil, ErrForbidden
	}
	return ss.suggestionRepo.ListByDocumentID(ctx, nil, documentID)
}

func (ss *suggestionService) Resolve(ctx context.Context, suggestionID uuid.UUID, status types.SuggestionStatus) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return ErrUnauthorized
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown suggestion status %q", ErrInvalidInput, status)
	}

	suggestions, err := ss.suggestionRepo.GetByIDs(ctx, nil, []uuid.UUID{suggestionID})
	if err != nil {
		return fmt.Errorf("failed to fetch suggestion: %w", err)
	}
	if len(suggestions) == 0 {
		return ErrNotFound
	}
	if suggestions[0].UserID != rd.UserID {
		return ErrForbidden
	}
	return ss.suggestionRepo.UpdateStatus(ctx, nil, suggestionID, status)
}
