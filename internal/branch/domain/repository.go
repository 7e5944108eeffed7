package domain

import (
	"context"

	"github.com/billforge/billforge/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListBranchFilter struct {
	City  string
	State string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, branch *Branch) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Branch, error)
	// LockByID loads the branch under a row-level write lock; it must run
	// inside a transaction.
	LockByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Branch, error)
	List(ctx context.Context, db *gorm.DB, filter ListBranchFilter, page pagination.Pagination) ([]*Branch, error)
	Update(ctx context.Context, db *gorm.DB, branch *Branch) error
	UpdateCounter(ctx context.Context, tx *gorm.DB, branch *Branch) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
