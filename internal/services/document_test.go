package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkarlin/chatdeck-backend/internal/realtime"
	"github.com/mkarlin/chatdeck-backend/internal/repos"
	"github.com/mkarlin/chatdeck-backend/internal/repos/testutil"
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

type fakeBus struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (f *fakeBus) Publish(ctx context.Context, event realtime.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeBus) StartForwarder(ctx context.Context, onMsg func(event realtime.Event)) error {
	return nil
}

func (f *fakeBus) Close() error { return nil }

func (f *fakeBus) published() []realtime.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]realtime.Event, len(f.events))
	copy(out, f.events)
	return out
}

func newDocumentFixture(t *testing.T) (DocumentService, *gorm.DB, *fakeBus) {
	t.Helper()
	gdb := testDB(t)
	log := testutil.Logger(t)
	documentRepo := repos.NewDocumentRepo(gdb, log)
	eventBus := &fakeBus{}
	return NewDocumentService(gdb, log, documentRepo, eventBus), gdb, eventBus
}

func saveRevision(t *testing.T, svc DocumentService, ctx context.Context, id uuid.UUID, content string) *types.Document {
	t.Helper()
	doc, err := svc.Save(ctx, SaveDocumentInput{
		ID:      id,
		Title:   "Essay",
		Content: content,
		Kind:    types.DocumentKindText,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Revisions are keyed by (id, created_at); keep timestamps distinct.
	time.Sleep(2 * time.Millisecond)
	return doc
}

func TestSaveAppendsRevisions(t *testing.T) {
	svc, _, _ := newDocumentFixture(t)
	ctx := authedCtx(uuid.New())
	docID := uuid.New()

	contents := []string{"v1", "v1 v2", "v1 v2 v3"}
	for _, content := range contents {
		saveRevision(t, svc, ctx, docID, content)
	}

	revisions, err := svc.GetRevisions(ctx, docID)
	if err != nil {
		t.Fatalf("GetRevisions: %v", err)
	}
	if len(revisions) != len(contents) {
		t.Fatalf("revisions: want=%d got=%d", len(contents), len(revisions))
	}
	for i, rev := range revisions {
		if rev.Content != contents[i] {
			t.Fatalf("revision %d: want=%q got=%q", i, contents[i], rev.Content)
		}
		if i > 0 && !revisions[i-1].CreatedAt.Before(rev.CreatedAt) {
			t.Fatalf("revisions must be ordered oldest first")
		}
	}
}

func TestDocumentOwnership(t *testing.T) {
	svc, _, _ := newDocumentFixture(t)
	owner := authedCtx(uuid.New())
	stranger := authedCtx(uuid.New())
	docID := uuid.New()

	saveRevision(t, svc, owner, docID, "private notes")

	if _, err := svc.GetRevisions(stranger, docID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger read: want ErrForbidden, got %v", err)
	}
	if _, err := svc.Save(stranger, SaveDocumentInput{ID: docID, Content: "hijack", Kind: types.DocumentKindText}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger save: want ErrForbidden, got %v", err)
	}
	if _, err := svc.DeleteAfter(stranger, docID, time.Time{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger delete: want ErrForbidden, got %v", err)
	}

	if _, err := svc.GetRevisions(context.Background(), docID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("no session: want ErrUnauthorized, got %v", err)
	}
	if _, err := svc.GetRevisions(owner, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown document: want ErrNotFound, got %v", err)
	}
}

func TestDeleteAfterIsStrict(t *testing.T) {
	svc, _, _ := newDocumentFixture(t)
	ctx := authedCtx(uuid.New())
	docID := uuid.New()

	saveRevision(t, svc, ctx, docID, "v1")
	second := saveRevision(t, svc, ctx, docID, "v2")
	third := saveRevision(t, svc, ctx, docID, "v3")

	deleted, err := svc.DeleteAfter(ctx, docID, second.CreatedAt)
	if err != nil {
		t.Fatalf("DeleteAfter: %v", err)
	}
	if len(deleted) != 1 || deleted[0].Content != third.Content {
		t.Fatalf("deleted: want exactly v3, got %d rows", len(deleted))
	}

	remaining, err := svc.GetRevisions(ctx, docID)
	if err != nil {
		t.Fatalf("GetRevisions: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("remaining: want=2 got=%d", len(remaining))
	}
	if remaining[len(remaining)-1].Content != "v2" {
		t.Fatalf("current version after rollback: want=v2 got=%q", remaining[len(remaining)-1].Content)
	}
}

func TestSavePublishesSuffixDelta(t *testing.T) {
	svc, _, eventBus := newDocumentFixture(t)
	ctx := authedCtx(uuid.New())
	docID := uuid.New()
	chatID := uuid.New()

	save := func(content string, kind types.DocumentKind) {
		t.Helper()
		if _, err := svc.Save(ctx, SaveDocumentInput{ID: docID, ChatID: chatID, Content: content, Kind: kind}); err != nil {
			t.Fatalf("Save: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	save("Hello", types.DocumentKindText)
	save("Hello world", types.DocumentKindText)

	events := eventBus.published()
	if len(events) != 2 {
		t.Fatalf("events: want=2 got=%d", len(events))
	}
	if events[0].Channel != realtime.ChatChannel(chatID.String()) {
		t.Fatalf("channel: got %s", events[0].Channel)
	}
	if events[0].Part.Type != realtime.PartTypeTextDelta || events[0].Part.Content != "Hello" {
		t.Fatalf("first part: got %+v", events[0].Part)
	}
	if events[1].Part.Content != " world" {
		t.Fatalf("extending save must publish only the suffix, got %q", events[1].Part.Content)
	}
}

func TestSaveImagePublishesFullContent(t *testing.T) {
	svc, _, eventBus := newDocumentFixture(t)
	ctx := authedCtx(uuid.New())
	docID := uuid.New()
	chatID := uuid.New()

	for _, url := range []string{"https://img.example/one.png", "https://img.example/two.png"} {
		if _, err := svc.Save(ctx, SaveDocumentInput{ID: docID, ChatID: chatID, Content: url, Kind: types.DocumentKindImage}); err != nil {
			t.Fatalf("Save: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	events := eventBus.published()
	if len(events) != 2 {
		t.Fatalf("events: want=2 got=%d", len(events))
	}
	last := events[1].Part
	if last.Type != realtime.PartTypeImageDelta {
		t.Fatalf("part type: want=image-delta got=%s", last.Type)
	}
	if last.Content != "https://img.example/two.png" {
		t.Fatalf("image parts carry the full URL, got %q", last.Content)
	}
}

func TestSaveValidatesInput(t *testing.T) {
	svc, _, _ := newDocumentFixture(t)
	ctx := authedCtx(uuid.New())

	if _, err := svc.Save(ctx, SaveDocumentInput{Kind: types.DocumentKindText}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing id: want ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Save(ctx, SaveDocumentInput{ID: uuid.New(), Kind: "spreadsheet"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown kind: want ErrInvalidInput, got %v", err)
	}
}
