package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mkarlin/chatdeck-backend/internal/repos"
	"github.com/mkarlin/chatdeck-backend/internal/repos/testutil"
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

func newSuggestionFixture(t *testing.T) (SuggestionService, DocumentService) {
	t.Helper()
	gdb := testDB(t)
	log := testutil.Logger(t)
	documentRepo := repos.NewDocumentRepo(gdb, log)
	suggestionRepo := repos.NewSuggestionRepo(gdb, log)
	return NewSuggestionService(gdb, log, suggestionRepo, documentRepo),
		NewDocumentService(gdb, log, documentRepo, nil)
}

func TestCreateSuggestionTargetsCurrentRevision(t *testing.T) {
	suggestions, documents := newSuggestionFixture(t)
	ctx := authedCtx(uuid.New())
	docID := uuid.New()

	saveRevision(t, documents, ctx, docID, "first draft")
	current := saveRevision(t, documents, ctx, docID, "second draft")

	created, err := suggestions.Create(ctx, CreateSuggestionInput{
		DocumentID:    docID,
		OriginalText:  "second",
		SuggestedText: "final",
		Description:   "tighten the wording",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created.DocumentCreatedAt.Equal(current.CreatedAt) {
		t.Fatalf("suggestion must pin the current revision: want=%s got=%s",
			current.CreatedAt, created.DocumentCreatedAt)
	}
	if created.Status != types.SuggestionStatusPending {
		t.Fatalf("new suggestions start pending, got %s", created.Status)
	}

	listed, err := suggestions.ListByDocument(ctx, docID)
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("listed: got %d rows", len(listed))
	}
}

func TestCreateSuggestionValidation(t *testing.T) {
	suggestions, documents := newSuggestionFixture(t)
	ctx := authedCtx(uuid.New())
	docID := uuid.New()
	saveRevision(t, documents, ctx, docID, "draft")

	if _, err := suggestions.Create(ctx, CreateSuggestionInput{DocumentID: docID}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty suggested text: want ErrInvalidInput, got %v", err)
	}
	if _, err := suggestions.Create(ctx, CreateSuggestionInput{DocumentID: uuid.New(), SuggestedText: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown document: want ErrNotFound, got %v", err)
	}
	stranger := authedCtx(uuid.New())
	if _, err := suggestions.Create(stranger, CreateSuggestionInput{DocumentID: docID, SuggestedText: "x"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign document: want ErrForbidden, got %v", err)
	}
}

func TestResolveSuggestion(t *testing.T) {
	suggestions, documents := newSuggestionFixture(t)
	ctx := authedCtx(uuid.New())
	docID := uuid.New()
	saveRevision(t, documents, ctx, docID, "draft")

	created, err := suggestions.Create(ctx, CreateSuggestionInput{DocumentID: docID, SuggestedText: "polished"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := suggestions.Resolve(ctx, created.ID, "approved"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown status: want ErrInvalidInput, got %v", err)
	}
	if err := suggestions.Resolve(authedCtx(uuid.New()), created.ID, types.SuggestionStatusApplied); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger resolve: want ErrForbidden, got %v", err)
	}
	if err := suggestions.Resolve(ctx, created.ID, types.SuggestionStatusApplied); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	listed, err := suggestions.ListByDocument(ctx, docID)
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if listed[0].Status != types.SuggestionStatusApplied {
		t.Fatalf("status: want=applied got=%s", listed[0].Status)
	}

	if err := suggestions.Resolve(ctx, created.ID, types.SuggestionStatusDismissed); err != nil {
		t.Fatalf("Resolve(dismissed): %v", err)
	}
}
