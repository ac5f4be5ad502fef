package models

import "time"

// EscalationPriority orders review urgency.
type EscalationPriority string

const (
	PriorityLow    EscalationPriority = "low"
	PriorityMedium EscalationPriority = "medium"
	PriorityHigh   EscalationPriority = "high"
)

// EscalationStatus is the review lifecycle state.
type EscalationStatus string

const (
	EscalationPending   EscalationStatus = "pending"
	EscalationInReview  EscalationStatus = "in_review"
	EscalationResolved  EscalationStatus = "resolved"
	EscalationDismissed EscalationStatus = "dismissed"
)

// EscalationModel flags content for human review.
type EscalationModel struct {
	Base
	UserID         string             `json:"user_id"         gorm:"index;not null"`
	Content        string             `json:"content"         gorm:"type:text;not null"`
	Reason         string             `json:"reason"          gorm:"type:varchar(512)"`
	Priority       EscalationPriority `json:"priority"        gorm:"type:varchar(16);index;default:'medium'"`
	Flags          StringArray        `json:"flags"           gorm:"type:longtext"`
	AlignmentScore float64            `json:"alignment_score"`
	Status         EscalationStatus   `json:"status"          gorm:"type:varchar(16);index;default:'pending'"`
	ReviewerID     *string            `json:"reviewer_id"     gorm:"index"`
	ResolvedAt     *time.Time         `json:"resolved_at"`
}

func (EscalationModel) TableName() string { return "escalations" }
