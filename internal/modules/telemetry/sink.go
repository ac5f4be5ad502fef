// Package telemetry records pipeline events with privacy redaction
// applied at write time.
package telemetry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/selam-edu/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Event kinds emitted by the pipeline.
const (
	KindAdmission           = "admission"
	KindModeration          = "moderation"
	KindProviderLatency     = "provider_latency"
	KindAlignment           = "alignment"
	KindUnsupportedLanguage = "unsupported_language"
	KindBadRequest          = "bad_request"
	KindAIError             = "ai_error"
	KindPersistenceFailure  = "persistence_failure"
	KindEscalationCreated   = "escalation_created"
	KindRetentionSweep      = "retention_sweep"
)

// Field keys that may carry raw conversation text. They are stripped
// before persistence unless retention of conversation data is enabled.
var rawContentKeys = []string{"question", "answer", "text", "prompt", "response"}

// Event is one telemetry record before redaction.
type Event struct {
	Kind      string
	UserID    string
	SessionID string
	Language  string
	Fields    map[string]interface{}
}

// Sink appends events to the telemetry table. It is a pure consumer: no
// other component reads from it during request handling.
type Sink struct {
	db            *gorm.DB
	retainContent bool
	anonymize     bool
	retentionDays int
	log           *zap.Logger
}

func NewSink(db *gorm.DB, retainContent, anonymize bool, retentionDays int, log *zap.Logger) *Sink {
	return &Sink{
		db:            db,
		retainContent: retainContent,
		anonymize:     anonymize,
		retentionDays: retentionDays,
		log:           log,
	}
}

// Emit persists one event. Redaction happens here, never downstream:
// with content retention disabled, raw bodies are replaced by their
// lengths.
func (s *Sink) Emit(ctx context.Context, ev Event) error {
	fields := make(map[string]interface{}, len(ev.Fields))
	for k, v := range ev.Fields {
		fields[k] = v
	}

	if !s.retainContent {
		for _, key := range rawContentKeys {
			if raw, ok := fields[key]; ok {
				if text, isStr := raw.(string); isStr {
					fields[key+"_len"] = len(text)
				}
				delete(fields, key)
			}
		}
	}

	userID := ev.UserID
	if s.anonymize {
		userID = pseudonymize(userID)
	}

	row := models.TelemetryEventModel{
		Kind:      ev.Kind,
		UserID:    userID,
		SessionID: ev.SessionID,
		Language:  ev.Language,
		Fields:    fields,
		Timestamp: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.log.Warn("telemetry write failed", zap.String("kind", ev.Kind), zap.Error(err))
		return err
	}
	return nil
}

// Sweep removes events older than the retention window and returns how
// many rows were deleted.
func (s *Sink) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	result := s.db.WithContext(ctx).
		Unscoped().
		Where("timestamp < ?", cutoff).
		Delete(&models.TelemetryEventModel{})
	return result.RowsAffected, result.Error
}

// RetentionDays exposes the configured window for the sweep job.
func (s *Sink) RetentionDays() int { return s.retentionDays }

// pseudonymize replaces a user ID with a stable hash so per-user
// aggregation still works without identifying anyone.
func pseudonymize(userID string) string {
	if userID == "" {
		return ""
	}
	h := sha256.Sum256([]byte("selam:telemetry:" + userID))
	return hex.EncodeToString(h[:8])
}
