package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tax *Tax) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tax, error)
	FindByRate(ctx context.Context, db *gorm.DB, rate decimal.Decimal) (*Tax, error)
	List(ctx context.Context, db *gorm.DB) ([]*Tax, error)
	Update(ctx context.Context, db *gorm.DB, tax *Tax) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
