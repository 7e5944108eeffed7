package repository

import (
	"context"
	"errors"
	"time"

	"github.com/billforge/billforge/internal/tax/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, tax *domain.Tax) error {
	return conn.WithContext(ctx).Create(tax).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Tax, error) {
	var tax domain.Tax
	err := conn.WithContext(ctx).Where("id = ?", id).First(&tax).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tax, nil
}

func (r *repo) FindByRate(ctx context.Context, conn *gorm.DB, rate decimal.Decimal) (*domain.Tax, error) {
	var tax domain.Tax
	err := conn.WithContext(ctx).
		Where("percentage = ?", rate).
		Order("id asc").
		First(&tax).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tax, nil
}

func (r *repo) List(ctx context.Context, conn *gorm.DB) ([]*domain.Tax, error) {
	var taxes []*domain.Tax
	err := conn.WithContext(ctx).Order("percentage asc").Find(&taxes).Error
	if err != nil {
		return nil, err
	}
	return taxes, nil
}

func (r *repo) Update(ctx context.Context, conn *gorm.DB, tax *domain.Tax) error {
	tax.UpdatedAt = time.Now().UTC()
	return conn.WithContext(ctx).Save(tax).Error
}

func (r *repo) Delete(ctx context.Context, conn *gorm.DB, id snowflake.ID) error {
	return conn.WithContext(ctx).Where("id = ?", id).Delete(&domain.Tax{}).Error
}
