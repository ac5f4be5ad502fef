package conversation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/selam-edu/core/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.ConversationModel{}, &models.MessageModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(db)
}

func TestUpsertIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Upsert(ctx, "u1", "sess-1")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second, err := s.Upsert(ctx, "u1", "sess-1")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("upsert must return the same conversation: %s != %s", first.ID, second.ID)
	}

	other, err := s.Upsert(ctx, "u1", "sess-2")
	if err != nil {
		t.Fatalf("other session upsert: %v", err)
	}
	if other.ID == first.ID {
		t.Fatal("different sessions must get different conversations")
	}
}

func TestAppendExchangeOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	conv, _ := s.Upsert(ctx, "u1", "sess-1")

	meta := models.MessageMeta{Language: "en", AlignmentScore: 0.9}
	if err := s.AppendExchange(ctx, conv.ID, "What is Timkat?", "Timkat is the feast of baptism.", meta, false); err != nil {
		t.Fatalf("append: %v", err)
	}

	msgs, err := s.History(ctx, "u1", "sess-1", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[1].Role != models.RoleAssistant {
		t.Fatalf("pair must sort user then assistant, got %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if !msgs[0].CreatedAt.Before(msgs[1].CreatedAt) {
		t.Fatal("assistant timestamp must follow the user timestamp")
	}
	if msgs[1].Meta.AlignmentScore != 0.9 {
		t.Fatalf("assistant meta lost: %+v", msgs[1].Meta)
	}
	if msgs[0].Meta.AlignmentScore != 0 {
		t.Fatal("user message must only carry the language in meta")
	}

	var updated models.ConversationModel
	if err := s.db.First(&updated, "id = ?", conv.ID).Error; err != nil {
		t.Fatalf("reload conversation: %v", err)
	}
	if updated.MessageCount != 2 {
		t.Fatalf("message_count = %d, want 2", updated.MessageCount)
	}
	if updated.NeedsModeration {
		t.Fatal("clean exchange must not flag moderation")
	}
}

func TestAppendExchangeFlagsModeration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	conv, _ := s.Upsert(ctx, "u1", "sess-1")

	err := s.AppendExchange(ctx, conv.ID, "blocked question", "guidance", models.MessageMeta{Language: "en"}, true)
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	var updated models.ConversationModel
	s.db.First(&updated, "id = ?", conv.ID)
	if !updated.NeedsModeration {
		t.Fatal("exchange must flag the conversation for moderation")
	}
}

func TestHistoryLimitReturnsMostRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	conv, _ := s.Upsert(ctx, "u1", "sess-1")

	for i := 0; i < 5; i++ {
		q := fmt.Sprintf("question %d", i)
		a := fmt.Sprintf("answer %d", i)
		if err := s.AppendExchange(ctx, conv.ID, q, a, models.MessageMeta{}, false); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	msgs, err := s.History(ctx, "u1", "sess-1", 4)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	// Last two exchanges, in ascending order.
	if msgs[0].Content != "question 3" || msgs[3].Content != "answer 4" {
		t.Fatalf("unexpected window: %q .. %q", msgs[0].Content, msgs[3].Content)
	}
}

func TestHistoryUnknownConversation(t *testing.T) {
	s := newTestStore(t)
	msgs, err := s.History(context.Background(), "nobody", "nowhere", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty history, got %d", len(msgs))
	}
}

func TestFind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if conv, err := s.Find(ctx, "u1", "sess-1"); err != nil || conv != nil {
		t.Fatalf("expected nil for unknown conversation, got %v, %v", conv, err)
	}

	created, _ := s.Upsert(ctx, "u1", "sess-1")
	found, err := s.Find(ctx, "u1", "sess-1")
	if err != nil || found == nil {
		t.Fatalf("find: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("found wrong conversation: %s != %s", found.ID, created.ID)
	}
}

func TestDeleteOlderThan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old, _ := s.Upsert(ctx, "u1", "old-sess")
	s.AppendExchange(ctx, old.ID, "q", "a", models.MessageMeta{}, false)
	s.db.Model(&models.ConversationModel{}).
		Where("id = ?", old.ID).
		Update("last_activity_at", time.Now().AddDate(0, 0, -40))

	fresh, _ := s.Upsert(ctx, "u1", "fresh-sess")
	s.AppendExchange(ctx, fresh.ID, "q", "a", models.MessageMeta{}, false)

	removed, err := s.DeleteOlderThan(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed conversation, got %d", removed)
	}

	var msgCount int64
	s.db.Model(&models.MessageModel{}).Where("conversation_id = ?", old.ID).Count(&msgCount)
	if msgCount != 0 {
		t.Fatalf("messages of deleted conversation must be gone, got %d", msgCount)
	}
	if conv, _ := s.Find(ctx, "u1", "fresh-sess"); conv == nil {
		t.Fatal("fresh conversation must survive")
	}
}
