package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkarlin/chatdeck-backend/internal/logger"
	"github.com/mkarlin/chatdeck-backend/internal/realtime"
	"github.com/mkarlin/chatdeck-backend/internal/realtime/bus"
	"github.com/mkarlin/chatdeck-backend/internal/repos"
	"github.com/mkarlin/chatdeck-backend/internal/requestdata"
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

type SaveDocumentInput struct {
	ID      uuid.UUID
	ChatID  uuid.UUID
	Title   string
	Content string
	Kind    types.DocumentKind
}

type DocumentService interface {
	GetRevisions(ctx context.Context, documentID uuid.UUID) ([]*types.Document, error)
	Save(ctx context.Context, input SaveDocumentInput) (*types.Document, error)
	DeleteAfter(ctx context.Context, documentID uuid.UUID, after time.Time) ([]*types.Document, error)
}

type documentService struct {
	db           *gorm.DB
	log          *logger.Logger
	documentRepo repos.DocumentRepo
	bus          bus.Bus
}

func NewDocumentService(db *gorm.DB, log *logger.Logger, documentRepo repos.DocumentRepo, eventBus bus.Bus) DocumentService {
	return &documentService{
		db:           db,
		log:          log.With("service", "DocumentService"),
		documentRepo: documentRepo,
		bus:          eventBus,
	}
}

// GetRevisions returns every revision of the document, oldest first.
// Ownership is all-or-nothing: a caller who does not own the document
// sees none of its history.
func (ds *documentService) GetRevisions(ctx context.Context, documentID uuid.UUID) ([]*types.Document, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, ErrUnauthorized
	}
	revisions, err := ds.documentRepo.GetRevisionsByID(ctx, nil, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch revisions: %w", err)
	}
	if len(revisions) == 0 {
		return nil, ErrNotFound
	}
	if revisions[0].UserID != rd.UserID {
		return nil, ErrForbidden
	}
	return revisions, nil
}

// Save appends a new revision. When prior revisions exist the caller
// must own them; the first save of an id claims ownership.
func (ds *documentService) Save(ctx context.Context, input SaveDocumentInput) (*types.Document, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, ErrUnauthorized
	}
	if input.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: document id required", ErrInvalidInput)
	}
	if !input.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown document kind %q", ErrInvalidInput, input.Kind)
	}

	existing, err := ds.documentRepo.GetRevisionsByID(ctx, nil, input.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch revisions: %w", err)
	}
	var previous *types.Document
	if len(existing) > 0 {
		if existing[0].UserID != rd.UserID {
			return nil, ErrForbidden
		}
		previous = existing[len(existing)-1]
	}

	doc := &types.Document{
		ID:        input.ID,
		CreatedAt: time.Now().UTC(),
		ChatID:    input.ChatID,
		Title:     input.Title,
		Content:   input.Content,
		Kind:      input.Kind,
		UserID:    rd.UserID,
	}
	if _, err := ds.documentRepo.CreateRevision(ctx, nil, doc); err != nil {
		return nil, fmt.Errorf("failed to save revision: %w", err)
	}

	ds.publishPart(ctx, doc, previous)
	return doc, nil
}

// DeleteAfter discards all revisions created strictly after the given
// instant and returns them. Used to roll the artifact back to an
// earlier state.
func (ds *documentService) DeleteAfter(ctx context.Context, documentID uuid.UUID, after time.Time) ([]*types.Document, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, ErrUnauthorized
	}
	revisions, err := ds.documentRepo.GetRevisionsByID(ctx, nil, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch revisions: %w", err)
	}
	if len(revisions) == 0 {
		return nil, ErrNotFound
	}
	if revisions[0].UserID != rd.UserID {
		return nil, ErrForbidden
	}

	deleted, err := ds.documentRepo.DeleteByIDAfterTimestamp(ctx, nil, documentID, after)
	if err != nil {
		return nil, fmt.Errorf("failed to delete revisions: %w", err)
	}
	return deleted, nil
}

// publishPart mirrors a saved revision into the artifact panel's stream.
// Text and code revisions that extend the previous content publish just
// the appended suffix; anything else publishes the full content.
func (ds *documentService) publishPart(ctx context.Context, doc, previous *types.Document) {
	if ds.bus == nil || doc.ChatID == uuid.Nil {
		return
	}
	content := doc.Content
	if previous != nil && doc.Kind != types.DocumentKindImage {
		if suffix, ok := strings.CutPrefix(doc.Content, previous.Content); ok {
			content = suffix
		}
	}
	event := realtime.Event{
		Channel: realtime.ChatChannel(doc.ChatID.String()),
		Part: realtime.StreamPart{
			Type:    realtime.DeltaTypeFor(doc.Kind),
			Kind:    doc.Kind,
			Content: content,
		},
	}
	if err := ds.bus.Publish(ctx, event); err != nil {
		ds.log.Warn("Failed to publish artifact part", "error", err, "chat_id", doc.ChatID)
	}
}
