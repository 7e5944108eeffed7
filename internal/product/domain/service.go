package domain

import (
	"context"
	"errors"

	"github.com/billforge/billforge/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name     string
	UnitCost decimal.Decimal
}

type UpdateProductRequest struct {
	ID       string
	Name     *string
	UnitCost *decimal.Decimal
}

type ListProductRequest struct {
	PageToken string
	PageSize  int
	Name      string
}

type ListProductResponse struct {
	pagination.PageInfo
	Products []Product `json:"products"`
}

type GetProductRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateProductRequest) (Product, error)
	List(context.Context, ListProductRequest) (ListProductResponse, error)
	GetByID(context.Context, GetProductRequest) (Product, error)
	Update(context.Context, UpdateProductRequest) (Product, error)
	Delete(context.Context, GetProductRequest) error
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidUnitCost = errors.New("invalid_unit_cost")
	ErrNotFound        = errors.New("not_found")
)
