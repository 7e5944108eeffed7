package repository

import (
	"context"
	"errors"
	"time"

	"github.com/billforge/billforge/internal/branch/domain"
	"github.com/billforge/billforge/pkg/db"
	"github.com/billforge/billforge/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, branch *domain.Branch) error {
	return conn.WithContext(ctx).Create(branch).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Branch, error) {
	var branch domain.Branch
	err := conn.WithContext(ctx).Where("id = ?", id).First(&branch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *repo) LockByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Branch, error) {
	var branch domain.Branch
	err := db.LockForUpdate(tx.WithContext(ctx)).Where("id = ?", id).First(&branch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *repo) List(ctx context.Context, conn *gorm.DB, filter domain.ListBranchFilter, page pagination.Pagination) ([]*domain.Branch, error) {
	var branches []*domain.Branch
	stmt := conn.WithContext(ctx).Model(&domain.Branch{})
	if filter.City != "" {
		stmt = stmt.Where("city = ?", filter.City)
	}
	if filter.State != "" {
		stmt = stmt.Where("state = ?", filter.State)
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
	err := stmt.Order("id desc").Find(&branches).Error
	if err != nil {
		return nil, err
	}
	return branches, nil
}

func (r *repo) Update(ctx context.Context, conn *gorm.DB, branch *domain.Branch) error {
	branch.UpdatedAt = time.Now().UTC()
	return conn.WithContext(ctx).Save(branch).Error
}

// UpdateCounter writes only the sequence fields so concurrent CRUD updates
// cannot clobber an in-flight number issuance.
func (r *repo) UpdateCounter(ctx context.Context, tx *gorm.DB, branch *domain.Branch) error {
	return tx.WithContext(ctx).Model(&domain.Branch{}).
		Where("id = ?", branch.ID).
		Updates(map[string]any{
			"last_invoice_number": branch.LastInvoiceNumber,
			"last_reset_date":     branch.LastResetDate,
			"updated_at":          time.Now().UTC(),
		}).Error
}

func (r *repo) Delete(ctx context.Context, conn *gorm.DB, id snowflake.ID) error {
	return conn.WithContext(ctx).Where("id = ?", id).Delete(&domain.Branch{}).Error
}
