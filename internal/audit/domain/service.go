package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type ListAuditLogRequest struct {
	Action     string
	TargetType string
	TargetID   string
}

type Service interface {
	// Record appends an audit entry. When tx is non-nil the entry joins the
	// caller's transaction so the log and the change commit together.
	Record(ctx context.Context, tx *gorm.DB, action, targetType, targetID string, metadata map[string]any) error
	List(ctx context.Context, req ListAuditLogRequest) ([]AuditLog, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListAuditLogRequest) ([]*AuditLog, error)
}

var ErrInvalidAction = errors.New("invalid_action")
