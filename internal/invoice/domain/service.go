package domain

import (
	"context"
	"errors"
	"time"

	"github.com/billforge/billforge/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

// ItemInput is one requested invoice line. Product lines must reference a
// product; service lines must carry a name.
type ItemInput struct {
	ItemType  string
	ProductID string
	Name      string
	Quantity  int64
	UnitCost  *decimal.Decimal
}

type CreateInvoiceRequest struct {
	InvoiceType   string
	ClientID      string
	BranchID      string
	BankAccountID string
	InvoiceDate   time.Time
	DueDate       time.Time
	Currency      string
	PaymentTerms  string
	TaxOption     string
	TaxName       string
	TaxRate       *decimal.Decimal
	Discount      *decimal.Decimal
	AmountPaid    *decimal.Decimal
	IsFinal       bool
	Items         []ItemInput
}

type UpdateInvoiceRequest struct {
	ID            string
	InvoiceType   *string
	ClientID      *string
	BranchID      *string
	BankAccountID *string
	InvoiceDate   *time.Time
	DueDate       *time.Time
	Currency      *string
	PaymentTerms  *string
	TaxOption     *string
	TaxName       *string
	TaxRate       *decimal.Decimal
	Discount      *decimal.Decimal
	AmountPaid    *decimal.Decimal
	IsFinal       *bool
	// Items, when non-nil, replaces the whole item set.
	Items *[]ItemInput
}

type ListInvoiceRequest struct {
	PageToken string
	PageSize  int
	ClientID  string
	BranchID  string
	// FinalOnly restricts the list to invoices retained in the final view.
	FinalOnly bool
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type GetInvoiceRequest struct {
	ID string
}

type CreateItemRequest struct {
	InvoiceID string
	Item      ItemInput
}

type UpdateItemRequest struct {
	ID       string
	ItemType *string
	Product  *string
	Name     *string
	Quantity *int64
	UnitCost *decimal.Decimal
}

type GetItemRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(context.Context, GetInvoiceRequest) (Invoice, error)
	Update(context.Context, UpdateInvoiceRequest) (Invoice, error)
	Delete(context.Context, GetInvoiceRequest) error

	// GenerateFinalNumber finalizes the invoice against its current branch.
	// Idempotent: an invoice that already has a final number is returned
	// unchanged with no counter increment. Not-final invoices pass through
	// untouched.
	GenerateFinalNumber(context.Context, GetInvoiceRequest) (Invoice, error)

	CreateItem(context.Context, CreateItemRequest) (InvoiceItem, error)
	UpdateItem(context.Context, UpdateItemRequest) (InvoiceItem, error)
	DeleteItem(context.Context, GetItemRequest) error
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidInvoiceType = errors.New("invalid_invoice_type")
	ErrInvalidClient      = errors.New("invalid_client")
	ErrInvalidBranch      = errors.New("invalid_branch")
	ErrInvalidBankAccount = errors.New("invalid_bank_account")
	ErrInvalidCurrency    = errors.New("invalid_currency")
	ErrInvalidTaxOption   = errors.New("invalid_tax_option")
	ErrInvalidTaxRate     = errors.New("invalid_tax_rate")
	ErrInvalidDiscount    = errors.New("invalid_discount")
	ErrInvalidAmountPaid  = errors.New("invalid_amount_paid")
	ErrInvalidItemType    = errors.New("invalid_item_type")
	ErrItemNameRequired   = errors.New("invalid_item_name")
	ErrItemProductMissing = errors.New("invalid_item_product")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidUnitCost    = errors.New("invalid_unit_cost")
	ErrNotFound           = errors.New("not_found")
	ErrItemNotFound       = errors.New("item_not_found")

	// ErrNumberConflict reports a duplicate draft or final number reaching
	// the store. Correct serialization makes this structurally impossible,
	// so it surfaces as an internal error rather than being retried.
	ErrNumberConflict = errors.New("invoice_number_conflict")
)
