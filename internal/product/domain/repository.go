package domain

import (
	"context"

	"github.com/billforge/billforge/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListProductFilter struct {
	Name string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	List(ctx context.Context, db *gorm.DB, filter ListProductFilter, page pagination.Pagination) ([]*Product, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
