package domain

import (
	"context"

	"github.com/billforge/billforge/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *BankAccount) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*BankAccount, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*BankAccount, error)
	Update(ctx context.Context, db *gorm.DB, account *BankAccount) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
