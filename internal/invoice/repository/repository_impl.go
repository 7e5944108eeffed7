package repository

import (
	"context"
	"errors"
	"time"

	"github.com/billforge/billforge/internal/invoice/domain"
	"github.com/billforge/billforge/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, invoice *domain.Invoice) error {
	return conn.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := conn.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, conn *gorm.DB, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := conn.WithContext(ctx).Model(&domain.Invoice{}).Preload("Items")
	if filter.ClientID != 0 {
		stmt = stmt.Where("client_id = ?", filter.ClientID)
	}
	if filter.BranchID != 0 {
		stmt = stmt.Where("branch_id = ?", filter.BranchID)
	}
	if filter.FinalOnly {
		stmt = stmt.Where("is_saved_final = ?", true)
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
	err := stmt.Order("id desc").Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) Update(ctx context.Context, conn *gorm.DB, invoice *domain.Invoice) error {
	invoice.UpdatedAt = time.Now().UTC()
	return conn.WithContext(ctx).Omit("Items").Save(invoice).Error
}

func (r *repo) UpdateDerived(ctx context.Context, conn *gorm.DB, invoice *domain.Invoice) error {
	return conn.WithContext(ctx).Model(&domain.Invoice{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]any{
			"subtotal":   invoice.Subtotal,
			"gst":        invoice.GST,
			"total_due":  invoice.TotalDue,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repo) Delete(ctx context.Context, conn *gorm.DB, id snowflake.ID) error {
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&domain.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Invoice{}).Error
	})
}

func (r *repo) InsertItems(ctx context.Context, conn *gorm.DB, items []domain.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	return conn.WithContext(ctx).Create(&items).Error
}

func (r *repo) FindItemByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.InvoiceItem, error) {
	var item domain.InvoiceItem
	err := conn.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListItems(ctx context.Context, conn *gorm.DB, invoiceID snowflake.ID) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	err := conn.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateItem(ctx context.Context, conn *gorm.DB, item *domain.InvoiceItem) error {
	item.UpdatedAt = time.Now().UTC()
	return conn.WithContext(ctx).Save(item).Error
}

func (r *repo) DeleteItem(ctx context.Context, conn *gorm.DB, id snowflake.ID) error {
	return conn.WithContext(ctx).Where("id = ?", id).Delete(&domain.InvoiceItem{}).Error
}

func (r *repo) DeleteItemsByInvoice(ctx context.Context, conn *gorm.DB, invoiceID snowflake.ID) error {
	return conn.WithContext(ctx).Where("invoice_id = ?", invoiceID).Delete(&domain.InvoiceItem{}).Error
}
