package models

import "time"

// MessageRole indicates who authored a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ConversationModel tracks one Q&A thread per (user, session).
type ConversationModel struct {
	Base
	UserID          string    `json:"user_id"          gorm:"not null;index:idx_conv_user_session,unique,priority:1"`
	SessionID       string    `json:"session_id"       gorm:"not null;index:idx_conv_user_session,unique,priority:2"`
	LastActivityAt  time.Time `json:"last_activity_at" gorm:"index"`
	MessageCount    int       `json:"message_count"    gorm:"default:0"`
	NeedsModeration bool      `json:"needs_moderation" gorm:"default:false;index"`
}

func (ConversationModel) TableName() string { return "conversations" }

// MessageMeta holds the structured metadata stored with each message.
// Unknown extensions go into Extra so schema churn never loses data.
type MessageMeta struct {
	Language       string                 `json:"language,omitempty"`
	AlignmentScore float64                `json:"alignment_score,omitempty"`
	Flags          []string               `json:"flags,omitempty"`
	CacheHit       bool                   `json:"cache_hit,omitempty"`
	ModelID        string                 `json:"model_id,omitempty"`
	LatencyMS      int64                  `json:"latency_ms,omitempty"`
	Extra          map[string]interface{} `json:"extra,omitempty"`
}

// MessageModel is one append-only message inside a conversation.
type MessageModel struct {
	Base
	ConversationID string      `json:"conversation_id" gorm:"not null;index:idx_msg_conv_created,priority:1"`
	Role           MessageRole `json:"role"            gorm:"type:varchar(16);not null"`
	Content        string      `json:"content"         gorm:"type:text;not null"`
	Meta           MessageMeta `json:"meta"            gorm:"serializer:json;type:longtext"`
}

func (MessageModel) TableName() string { return "messages" }
