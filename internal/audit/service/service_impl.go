package service

import (
	"context"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/audit/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, action, targetType, targetID string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return domain.ErrInvalidAction
	}
	if targetType = strings.TrimSpace(targetType); targetType == "" {
		targetType = "unknown"
	}

	payload := datatypes.JSONMap{}
	for key, value := range metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}

	entry := domain.AuditLog{
		ID:         s.genID.Generate(),
		Action:     action,
		TargetType: targetType,
		TargetID:   strings.TrimSpace(targetID),
		Metadata:   payload,
		CreatedAt:  time.Now().UTC(),
	}

	conn := tx
	if conn == nil {
		conn = s.db
	}
	if err := s.repo.Insert(ctx, conn, &entry); err != nil {
		s.log.Error("audit log insert failed", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListAuditLogRequest) ([]domain.AuditLog, error) {
	items, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return nil, err
	}

	logs := make([]domain.AuditLog, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		logs = append(logs, *item)
	}
	return logs, nil
}
