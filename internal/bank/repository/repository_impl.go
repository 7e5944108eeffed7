package repository

import (
	"context"
	"errors"
	"time"

	"github.com/billforge/billforge/internal/bank/domain"
	"github.com/billforge/billforge/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, account *domain.BankAccount) error {
	return conn.WithContext(ctx).Create(account).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.BankAccount, error) {
	var account domain.BankAccount
	err := conn.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repo) List(ctx context.Context, conn *gorm.DB, page pagination.Pagination) ([]*domain.BankAccount, error) {
	var accounts []*domain.BankAccount
	stmt := conn.WithContext(ctx).Model(&domain.BankAccount{})
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
	err := stmt.Order("id desc").Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repo) Update(ctx context.Context, conn *gorm.DB, account *domain.BankAccount) error {
	account.UpdatedAt = time.Now().UTC()
	return conn.WithContext(ctx).Save(account).Error
}

func (r *repo) Delete(ctx context.Context, conn *gorm.DB, id snowflake.ID) error {
	return conn.WithContext(ctx).Where("id = ?", id).Delete(&domain.BankAccount{}).Error
}
