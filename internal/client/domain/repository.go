package domain

import (
	"context"

	"github.com/billforge/billforge/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListClientFilter struct {
	Name string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, client *Client) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Client, error)
	List(ctx context.Context, db *gorm.DB, filter ListClientFilter, page pagination.Pagination) ([]*Client, error)
	Update(ctx context.Context, db *gorm.DB, client *Client) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
