package repository

import (
	"context"
	"errors"
	"time"

	"github.com/billforge/billforge/internal/product/domain"
	"github.com/billforge/billforge/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, product *domain.Product) error {
	return conn.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := conn.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, conn *gorm.DB, filter domain.ListProductFilter, page pagination.Pagination) ([]*domain.Product, error) {
	var products []*domain.Product
	stmt := conn.WithContext(ctx).Model(&domain.Product{})
	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", filter.Name+"%")
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		cursorID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("id < ?", cursorID)
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}
	err := stmt.Order("id desc").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repo) Update(ctx context.Context, conn *gorm.DB, product *domain.Product) error {
	product.UpdatedAt = time.Now().UTC()
	return conn.WithContext(ctx).Save(product).Error
}

func (r *repo) Delete(ctx context.Context, conn *gorm.DB, id snowflake.ID) error {
	return conn.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{}).Error
}
