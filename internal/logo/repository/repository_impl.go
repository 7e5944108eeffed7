package repository

import (
	"context"
	"errors"

	"github.com/billforge/billforge/internal/logo/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, logo *domain.Logo) error {
	return conn.WithContext(ctx).Create(logo).Error
}

func (r *repo) FindLatest(ctx context.Context, conn *gorm.DB) (*domain.Logo, error) {
	var logo domain.Logo
	err := conn.WithContext(ctx).Order("id desc").First(&logo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &logo, nil
}
