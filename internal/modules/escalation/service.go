// Package escalation manages the human review queue for flagged content.
package escalation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/selam-edu/core/internal/models"
	"github.com/selam-edu/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service persists escalations and mirrors each open one into the task
// queue so reviewers see it on their dashboard.
type Service struct {
	db      *gorm.DB
	taskSvc *taskqueue.Service
	log     *zap.Logger
}

func NewService(db *gorm.DB, taskSvc *taskqueue.Service, log *zap.Logger) *Service {
	return &Service{db: db, taskSvc: taskSvc, log: log}
}

// CreateInput carries everything recorded on an escalation.
type CreateInput struct {
	UserID         string
	Content        string
	Reason         string
	Priority       models.EscalationPriority
	Flags          []string
	AlignmentScore float64
}

// Create opens a pending escalation. The review task is best effort; a
// queue outage must not lose the escalation row.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.EscalationModel, error) {
	row := models.EscalationModel{
		UserID:         in.UserID,
		Content:        in.Content,
		Reason:         in.Reason,
		Priority:       in.Priority,
		Flags:          in.Flags,
		AlignmentScore: in.AlignmentScore,
		Status:         models.EscalationPending,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}

	if s.taskSvc != nil {
		payload := map[string]string{
			"escalation_id": row.ID,
			"priority":      string(in.Priority),
			"reason":        in.Reason,
		}
		if _, err := s.taskSvc.Enqueue(ctx, taskqueue.TypeEscalationReview, payload, row.ID, in.UserID); err != nil {
			s.log.Warn("escalation review task enqueue failed",
				zap.String("escalation_id", row.ID),
				zap.Error(err))
		}
	}
	return &row, nil
}

// GetByID loads one escalation.
func (s *Service) GetByID(ctx context.Context, id string) (*models.EscalationModel, error) {
	var row models.EscalationModel
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns the base query filtered by status and priority, pending
// first and newest within each priority.
func (s *Service) List(ctx context.Context, status, priority string) *gorm.DB {
	tx := s.db.WithContext(ctx).
		Model(&models.EscalationModel{}).
		Order("created_at DESC")
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	if priority != "" {
		tx = tx.Where("priority = ?", priority)
	}
	return tx
}

var validTransitions = map[models.EscalationStatus][]models.EscalationStatus{
	models.EscalationPending:  {models.EscalationInReview, models.EscalationDismissed},
	models.EscalationInReview: {models.EscalationResolved, models.EscalationDismissed, models.EscalationPending},
}

// UpdateStatus moves an escalation through the review lifecycle and marks
// the mirrored task completed when review ends.
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.EscalationStatus, reviewerID string) (*models.EscalationModel, error) {
	row, err := s.GetByID(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}

	allowed := false
	for _, next := range validTransitions[row.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("cannot move escalation from %s to %s", row.Status, status)
	}

	row.Status = status
	if reviewerID != "" {
		row.ReviewerID = &reviewerID
	}
	if status == models.EscalationResolved || status == models.EscalationDismissed {
		now := time.Now()
		row.ResolvedAt = &now
	}
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}

	if s.taskSvc != nil && (status == models.EscalationResolved || status == models.EscalationDismissed) {
		if task, err := s.taskSvc.GetByDedupKey(ctx, taskqueue.TypeEscalationReview, id); err == nil && task != nil {
			_ = s.taskSvc.UpdateStatus(ctx, task.ID, taskqueue.TaskCompleted, nil, "")
		}
	}
	return row, nil
}

// DeleteResolvedOlderThan removes resolved and dismissed escalations past
// the retention cutoff.
func (s *Service) DeleteResolvedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Unscoped().
		Where("status IN ? AND resolved_at IS NOT NULL AND resolved_at < ?",
			[]models.EscalationStatus{models.EscalationResolved, models.EscalationDismissed}, cutoff).
		Delete(&models.EscalationModel{})
	return result.RowsAffected, result.Error
}
