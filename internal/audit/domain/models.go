package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AuditLog is one append-only record of a state change worth tracing,
// e.g. an invoice number issuance or replacement.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	Action     string            `gorm:"not null;index" json:"action"`
	TargetType string            `gorm:"not null" json:"target_type"`
	TargetID   string            `gorm:"not null;index" json:"target_id"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }
