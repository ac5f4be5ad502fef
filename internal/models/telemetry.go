package models

import "time"

// TelemetryEventModel is one append-only pipeline event.
// Privacy redaction happens at write time in the telemetry sink, never here.
type TelemetryEventModel struct {
	Base
	Kind      string                 `json:"kind"       gorm:"type:varchar(64);not null;index"`
	UserID    string                 `json:"user_id"    gorm:"index"`
	SessionID string                 `json:"session_id" gorm:"index"`
	Language  string                 `json:"language"   gorm:"type:varchar(16)"`
	Fields    map[string]interface{} `json:"fields"     gorm:"serializer:json;type:longtext"`
	Timestamp time.Time              `json:"timestamp"  gorm:"index"`
}

func (TelemetryEventModel) TableName() string { return "telemetry_events" }
