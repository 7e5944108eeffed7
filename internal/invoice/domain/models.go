// Package domain contains persistence models for invoices and their items.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// TaxOption switches tax computation for the whole invoice.
type TaxOption string

const (
	TaxOptionYes TaxOption = "yes"
	TaxOptionNo  TaxOption = "no"
)

// ItemType distinguishes catalog products from free-form service lines.
type ItemType string

const (
	ItemTypeProduct ItemType = "product"
	ItemTypeService ItemType = "service"
)

// Invoice carries two identifiers: InvoiceNumber is the provisional draft
// number assigned at creation, FinalInvoiceNumber is the legal per-branch
// per-fiscal-year sequence number assigned when the invoice is finalized.
// An invoice created final skips the draft series and holds no number at
// all until it is finalized. Subtotal, GST and TotalDue are derived from
// the items and never accepted from callers.
type Invoice struct {
	ID                 snowflake.ID     `gorm:"primaryKey" json:"id"`
	InvoiceNumber      *string          `gorm:"uniqueIndex" json:"invoice_number,omitempty"`
	FinalInvoiceNumber *string          `gorm:"uniqueIndex" json:"final_invoice_number,omitempty"`
	InvoiceType        ItemType         `gorm:"type:text;not null" json:"invoice_type"`
	ClientID           snowflake.ID     `gorm:"not null;index" json:"client_id"`
	BranchID           snowflake.ID     `gorm:"not null;index" json:"branch_id"`
	BankAccountID      snowflake.ID     `gorm:"not null" json:"bank_account_id"`
	InvoiceDate        time.Time        `gorm:"not null" json:"invoice_date"`
	DueDate            time.Time        `gorm:"not null" json:"due_date"`
	Currency           string           `gorm:"not null" json:"currency"`
	PaymentTerms       string           `json:"payment_terms"`
	TaxOption          TaxOption        `gorm:"type:text;not null;default:'no'" json:"tax_option"`
	TaxName            string           `json:"tax_name"`
	TaxRate            *decimal.Decimal `gorm:"type:decimal(5,2)" json:"tax_rate,omitempty"`
	Subtotal           decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"subtotal"`
	GST                decimal.Decimal  `gorm:"column:gst;type:decimal(10,2);not null;default:0" json:"gst"`
	Discount           decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	AmountPaid         decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"amount_paid"`
	TotalDue           decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"total_due"`
	IsFinal            bool             `gorm:"not null;default:false" json:"is_final"`
	IsSavedFinal       bool             `gorm:"not null;default:false" json:"is_saved_final"`
	Items              []InvoiceItem    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt          time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one line on an invoice. Product lines copy Name and UnitCost
// from the product at write time; Total and TotalGST are derived.
type InvoiceItem struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	ItemType  ItemType        `gorm:"type:text;not null" json:"item_type"`
	ProductID *snowflake.ID   `gorm:"index" json:"product_id,omitempty"`
	Name      string          `gorm:"not null" json:"name"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_cost"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total"`
	TotalGST  decimal.Decimal `gorm:"column:total_gst;type:decimal(10,2);not null;default:0" json:"total_gst"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }
