package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CreateTaxRequest struct {
	Name       string
	Percentage decimal.Decimal
}

type UpdateTaxRequest struct {
	ID         string
	Name       *string
	Percentage *decimal.Decimal
}

type GetTaxRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateTaxRequest) (Tax, error)
	List(context.Context) ([]Tax, error)
	GetByID(context.Context, GetTaxRequest) (Tax, error)
	Update(context.Context, UpdateTaxRequest) (Tax, error)
	Delete(context.Context, GetTaxRequest) error

	// FindByRate returns the first tax whose percentage equals rate, or nil
	// when none matches. Used to auto-fill invoice tax names.
	FindByRate(ctx context.Context, rate decimal.Decimal) (*Tax, error)
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidPercentage = errors.New("invalid_percentage")
	ErrNotFound          = errors.New("not_found")
)
