package moderation

import (
	"context"
	"time"

	"github.com/selam-edu/core/internal/models"
	"gorm.io/gorm"
)

const (
	historyWindow        = 7 * 24 * time.Hour
	frequentFlagMinCount = 3
	recurringMinShared   = 2
)

// userHistorySignals inspects the user's recent escalation record and
// returns additional flags. Database errors degrade to no signals; a
// screening decision must not fail because history was unreadable.
func userHistorySignals(ctx context.Context, db *gorm.DB, userID string, currentFlags []string) []string {
	if db == nil || userID == "" {
		return nil
	}

	cutoff := time.Now().Add(-historyWindow)
	var rows []models.EscalationModel
	err := db.WithContext(ctx).
		Select("flags").
		Where("user_id = ? AND created_at > ?", userID, cutoff).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil
	}

	var signals []string
	if len(rows) >= frequentFlagMinCount {
		signals = append(signals, "frequent_flagged_user")
	}

	current := make(map[string]struct{}, len(currentFlags))
	for _, f := range currentFlags {
		current[f] = struct{}{}
	}
	shared := 0
	for _, row := range rows {
		for _, f := range row.Flags {
			if _, ok := current[f]; ok {
				shared++
				break
			}
		}
	}
	if shared >= recurringMinShared {
		signals = append(signals, "recurring_issue_pattern")
	}
	return signals
}
