package domain

import (
	"context"

	"github.com/billforge/billforge/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListInvoiceFilter struct {
	ClientID  snowflake.ID
	BranchID  snowflake.ID
	FinalOnly bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	// UpdateDerived persists only the computed money fields.
	UpdateDerived(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertItems(ctx context.Context, db *gorm.DB, items []InvoiceItem) error
	FindItemByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*InvoiceItem, error)
	ListItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]InvoiceItem, error)
	UpdateItem(ctx context.Context, db *gorm.DB, item *InvoiceItem) error
	DeleteItem(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	DeleteItemsByInvoice(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error
}
