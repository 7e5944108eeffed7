package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, logo *Logo) error
	FindLatest(ctx context.Context, db *gorm.DB) (*Logo, error)
}
