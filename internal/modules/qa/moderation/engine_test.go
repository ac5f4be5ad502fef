package moderation

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/selam-edu/core/internal/models"
	"github.com/selam-edu/core/internal/modules/qa/language"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func TestScreenBlocksOnMultipleHighTopics(t *testing.T) {
	e := NewEngine(nil)
	res := e.Screen(context.Background(), "Is orthodoxy better than protestant faith? Protestants are wrong.", "u1", language.English)
	if res.RecommendedAction != ActionBlock {
		t.Fatalf("expected block, got %s", res.RecommendedAction)
	}
	if !res.NeedsReview {
		t.Fatal("blocked question must need review")
	}
	if res.Severity != SeverityHigh {
		t.Fatalf("expected high severity, got %s", res.Severity)
	}
	if len(res.Guidance) == 0 {
		t.Fatal("blocked question must carry guidance")
	}
}

func TestScreenEscalatesSingleHighTopic(t *testing.T) {
	e := NewEngine(nil)
	res := e.Screen(context.Background(), "My friend says I should convert to another church, what do I do?", "u1", language.English)
	if res.RecommendedAction != ActionEscalate {
		t.Fatalf("expected escalate, got %s", res.RecommendedAction)
	}
	if !res.NeedsReview {
		t.Fatal("expected needs review")
	}
}

func TestScreenEscalatesOffTopic(t *testing.T) {
	e := NewEngine(nil)
	res := e.Screen(context.Background(), "How do I cook pasta quickly at home tonight?", "u1", language.English)
	if res.RecommendedAction != ActionEscalate {
		t.Fatalf("expected escalate for off-topic, got %s", res.RecommendedAction)
	}
	if res.FaithAlignmentScore >= 0.60 {
		t.Fatalf("off-topic question should score below the escalate floor, got %.2f", res.FaithAlignmentScore)
	}
}

func TestScreenEscalatesTwoSensitiveTopics(t *testing.T) {
	e := NewEngine(nil)
	res := e.Screen(context.Background(), "Can I marry a protestant in the church? Why do priests fast during lent?", "u1", language.English)
	if res.RecommendedAction != ActionEscalate {
		t.Fatalf("expected escalate, got %s", res.RecommendedAction)
	}
	if len(res.Flags) < 2 {
		t.Fatalf("expected at least two topic flags, got %v", res.Flags)
	}
}

func TestScreenTooShortApprovesWithGuidance(t *testing.T) {
	e := NewEngine(nil)
	res := e.Screen(context.Background(), "Timkat?", "u1", language.English)
	if res.RecommendedAction != ActionApprove {
		t.Fatalf("expected approve, got %s", res.RecommendedAction)
	}
	if res.NeedsReview {
		t.Fatal("short question must not need review")
	}
	if len(res.Guidance) == 0 {
		t.Fatal("short question must carry refinement guidance")
	}
}

func TestScreenAutoApprovesDomainQuestion(t *testing.T) {
	e := NewEngine(nil)
	res := e.Screen(context.Background(), "What is the meaning of Timkat?", "u1", language.English)
	if res.RecommendedAction != ActionApprove {
		t.Fatalf("expected approve, got %s", res.RecommendedAction)
	}
	if res.NeedsReview {
		t.Fatal("domain question must not need review")
	}
	if len(res.Guidance) != 0 {
		t.Fatalf("auto-approved question must carry no guidance, got %v", res.Guidance)
	}
	if res.FaithAlignmentScore < 0.60 {
		t.Fatalf("strong domain term should lift the score, got %.2f", res.FaithAlignmentScore)
	}
}

func TestScreenRegeneratesOnErodedConfidence(t *testing.T) {
	e := NewEngine(nil)
	res := e.Screen(context.Background(),
		"Prove that the Trinity is real, what if god is not three, the church is better than before.",
		"u1", language.English)
	if res.RecommendedAction != ActionRegenerate {
		t.Fatalf("expected regenerate, got %s", res.RecommendedAction)
	}
	if res.Confidence >= 0.80 {
		t.Fatalf("three problematic categories should erode confidence below 0.80, got %.3f", res.Confidence)
	}
}

func TestScreenGuidanceLocalized(t *testing.T) {
	e := NewEngine(nil)
	res := e.Screen(context.Background(), "ተዋሕዶ?", "u1", language.Amharic)
	if len(res.Guidance) == 0 {
		t.Fatal("expected guidance")
	}
	for _, g := range res.Guidance {
		for _, r := range g {
			if r >= 'a' && r <= 'z' {
				t.Fatalf("Amharic guidance must not be English: %q", g)
			}
		}
	}
}

func TestScreenHistorySignals(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 3; i++ {
		err := db.Create(&models.EscalationModel{
			UserID:  "u-repeat",
			Content: "flagged question",
			Flags:   models.StringArray{"doctrine_comparison"},
		}).Error
		if err != nil {
			t.Fatalf("seed escalation: %v", err)
		}
	}

	e := NewEngine(db)
	res := e.Screen(context.Background(), "Is orthodoxy better than protestant teaching?", "u-repeat", language.English)

	wantFlags := map[string]bool{"frequent_flagged_user": false, "recurring_issue_pattern": false}
	for _, f := range res.Flags {
		if _, ok := wantFlags[f]; ok {
			wantFlags[f] = true
		}
	}
	for name, seen := range wantFlags {
		if !seen {
			t.Errorf("expected history flag %s in %v", name, res.Flags)
		}
	}
}

func TestScreenHistoryIgnoresOtherUsers(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 5; i++ {
		db.Create(&models.EscalationModel{
			UserID: "someone-else",
			Flags:  models.StringArray{"doctrine_comparison"},
		})
	}

	e := NewEngine(db)
	res := e.Screen(context.Background(), "Is orthodoxy better than protestant teaching?", "u-clean", language.English)
	for _, f := range res.Flags {
		if f == "frequent_flagged_user" || f == "recurring_issue_pattern" {
			t.Fatalf("history flags must not leak across users: %v", res.Flags)
		}
	}
}
