package repository

import (
	"context"
	"errors"
	"time"

	"github.com/billforge/billforge/internal/client/domain"
	"github.com/billforge/billforge/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, client *domain.Client) error {
	return conn.WithContext(ctx).Create(client).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := conn.WithContext(ctx).Where("id = ?", id).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repo) List(ctx context.Context, conn *gorm.DB, filter domain.ListClientFilter, page pagination.Pagination) ([]*domain.Client, error) {
	var clients []*domain.Client
	stmt := conn.WithContext(ctx).Model(&domain.Client{})
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
	err := stmt.Order("id desc").Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repo) Update(ctx context.Context, conn *gorm.DB, client *domain.Client) error {
	client.UpdatedAt = time.Now().UTC()
	return conn.WithContext(ctx).Save(client).Error
}

func (r *repo) Delete(ctx context.Context, conn *gorm.DB, id snowflake.ID) error {
	return conn.WithContext(ctx).Where("id = ?", id).Delete(&domain.Client{}).Error
}
