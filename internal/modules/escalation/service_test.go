package escalation

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/selam-edu/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.EscalationModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Task queue mirroring is best effort and exercised separately.
	return NewService(db, nil, zap.NewNop())
}

func TestCreateOpensPending(t *testing.T) {
	s := newTestService(t)
	row, err := s.Create(context.Background(), CreateInput{
		UserID:         "u1",
		Content:        "flagged question",
		Reason:         "moderation block",
		Priority:       models.PriorityHigh,
		Flags:          []string{"doctrine_comparison"},
		AlignmentScore: 0.3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if row.Status != models.EscalationPending {
		t.Fatalf("new escalation must be pending, got %s", row.Status)
	}
	if row.ID == "" {
		t.Fatal("id must be assigned")
	}

	loaded, err := s.GetByID(context.Background(), row.ID)
	if err != nil || loaded == nil {
		t.Fatalf("get: %v", err)
	}
	if len(loaded.Flags) != 1 || loaded.Flags[0] != "doctrine_comparison" {
		t.Fatalf("flags lost: %v", loaded.Flags)
	}
}

func TestGetByIDUnknown(t *testing.T) {
	s := newTestService(t)
	row, err := s.GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row != nil {
		t.Fatal("unknown id must return nil")
	}
}

func TestUpdateStatusLifecycle(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	row, _ := s.Create(ctx, CreateInput{UserID: "u1", Content: "q"})

	row, err := s.UpdateStatus(ctx, row.ID, models.EscalationInReview, "reviewer-1")
	if err != nil {
		t.Fatalf("to in_review: %v", err)
	}
	if row.ReviewerID == nil || *row.ReviewerID != "reviewer-1" {
		t.Fatal("reviewer must be recorded")
	}

	row, err = s.UpdateStatus(ctx, row.ID, models.EscalationResolved, "reviewer-1")
	if err != nil {
		t.Fatalf("to resolved: %v", err)
	}
	if row.ResolvedAt == nil {
		t.Fatal("resolution time must be recorded")
	}
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	row, _ := s.Create(ctx, CreateInput{UserID: "u1", Content: "q"})

	if _, err := s.UpdateStatus(ctx, row.ID, models.EscalationResolved, ""); err == nil {
		t.Fatal("pending -> resolved must be rejected")
	}

	row, _ = s.UpdateStatus(ctx, row.ID, models.EscalationDismissed, "")
	if _, err := s.UpdateStatus(ctx, row.ID, models.EscalationInReview, ""); err == nil {
		t.Fatal("dismissed is terminal")
	}
}

func TestListFilters(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	s.Create(ctx, CreateInput{UserID: "u1", Content: "a", Priority: models.PriorityHigh})
	s.Create(ctx, CreateInput{UserID: "u2", Content: "b", Priority: models.PriorityLow})

	var rows []models.EscalationModel
	if err := s.List(ctx, "", string(models.PriorityHigh)).Find(&rows).Error; err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].Priority != models.PriorityHigh {
		t.Fatalf("priority filter broken: %+v", rows)
	}

	rows = nil
	if err := s.List(ctx, string(models.EscalationPending), "").Find(&rows).Error; err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 pending rows, got %d", len(rows))
	}
}

func TestDeleteResolvedOlderThan(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	old, _ := s.Create(ctx, CreateInput{UserID: "u1", Content: "old"})
	s.UpdateStatus(ctx, old.ID, models.EscalationInReview, "r")
	s.UpdateStatus(ctx, old.ID, models.EscalationResolved, "r")
	s.db.Model(&models.EscalationModel{}).
		Where("id = ?", old.ID).
		Update("resolved_at", time.Now().AddDate(0, 0, -40))

	open, _ := s.Create(ctx, CreateInput{UserID: "u2", Content: "open"})

	removed, err := s.DeleteResolvedOlderThan(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if row, _ := s.GetByID(ctx, open.ID); row == nil {
		t.Fatal("open escalation must survive the sweep")
	}
}
