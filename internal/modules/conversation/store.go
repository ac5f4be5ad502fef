// Package conversation persists per-(user, session) question/answer
// history.
package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/selam-edu/core/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps the conversations and messages tables.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Upsert ensures a conversation row exists for (userID, sessionID) and
// returns it. Creation is idempotent under the unique index.
func (s *Store) Upsert(ctx context.Context, userID, sessionID string) (*models.ConversationModel, error) {
	conv := models.ConversationModel{
		UserID:         userID,
		SessionID:      sessionID,
		LastActivityAt: time.Now(),
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&conv)
	if res.Error != nil {
		return nil, res.Error
	}
	// The create hook assigns an ID even on conflict, so RowsAffected is
	// the only reliable signal that the row already existed.
	if res.RowsAffected == 0 {
		err := s.db.WithContext(ctx).
			Where("user_id = ? AND session_id = ?", userID, sessionID).
			First(&conv).Error
		if err != nil {
			return nil, err
		}
	}
	return &conv, nil
}

// AppendExchange writes the (user, assistant) message pair in one
// transaction, bumping the conversation counters. Either both messages
// become durable or neither does.
func (s *Store) AppendExchange(ctx context.Context, conversationID, userContent, assistantContent string, meta models.MessageMeta, needsModeration bool) error {
	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userMsg := models.MessageModel{
			ConversationID: conversationID,
			Role:           models.RoleUser,
			Content:        userContent,
			Meta:           models.MessageMeta{Language: meta.Language},
		}
		if err := tx.Create(&userMsg).Error; err != nil {
			return err
		}

		assistantMsg := models.MessageModel{
			ConversationID: conversationID,
			Role:           models.RoleAssistant,
			Content:        assistantContent,
			Meta:           meta,
		}
		// The pair must sort (user, assistant) even at equal timestamps.
		assistantMsg.CreatedAt = userMsg.CreatedAt.Add(time.Millisecond)
		if err := tx.Create(&assistantMsg).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"last_activity_at": now,
			"message_count":    gorm.Expr("message_count + 2"),
		}
		if needsModeration {
			updates["needs_moderation"] = true
		}
		return tx.Model(&models.ConversationModel{}).
			Where("id = ?", conversationID).
			Updates(updates).Error
	})
}

// MarkNeedsModeration flags a conversation for reviewer attention.
func (s *Store) MarkNeedsModeration(ctx context.Context, conversationID string) error {
	return s.db.WithContext(ctx).
		Model(&models.ConversationModel{}).
		Where("id = ?", conversationID).
		Update("needs_moderation", true).Error
}

// Find returns the conversation for (userID, sessionID), or nil when
// none exists yet.
func (s *Store) Find(ctx context.Context, userID, sessionID string) (*models.ConversationModel, error) {
	var conv models.ConversationModel
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// History returns the last limit messages for (userID, sessionID) in
// created-at ascending order. An unknown conversation yields an empty
// slice.
func (s *Store) History(ctx context.Context, userID, sessionID string, limit int) ([]models.MessageModel, error) {
	var conv models.ConversationModel
	err := s.db.WithContext(ctx).
		Select("id").
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var messages []models.MessageModel
	err = s.db.WithContext(ctx).
		Where("conversation_id = ?", conv.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse into ascending order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ListForUser returns a page of the user's conversations, newest activity
// first.
func (s *Store) ListForUser(ctx context.Context, userID string) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.ConversationModel{}).
		Where("user_id = ?", userID).
		Order("last_activity_at DESC")
}

// Messages returns the query for all messages of a conversation in
// chronological order.
func (s *Store) Messages(ctx context.Context, conversationID string) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.MessageModel{}).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC")
}

// DeleteOlderThan removes conversations and their messages whose last
// activity predates the cutoff. Returns the number of conversations
// removed.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&models.ConversationModel{}).
			Where("last_activity_at < ?", cutoff).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Unscoped().
			Where("conversation_id IN ?", ids).
			Delete(&models.MessageModel{}).Error; err != nil {
			return err
		}
		result := tx.Unscoped().
			Where("id IN ?", ids).
			Delete(&models.ConversationModel{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	return removed, err
}
