package domain

import (
	"context"
	"errors"

	"github.com/billforge/billforge/pkg/db/pagination"
)

type CreateBranchRequest struct {
	Name         string
	Address      string
	City         string
	State        string
	GSTIN        string
	PhoneCode    string
	Phone        string
	Website      string
	SeriesPrefix string
}

type UpdateBranchRequest struct {
	ID           string
	Name         *string
	Address      *string
	City         *string
	State        *string
	GSTIN        *string
	PhoneCode    *string
	Phone        *string
	Website      *string
	SeriesPrefix *string
}

type ListBranchRequest struct {
	PageToken string
	PageSize  int
	City      string
	State     string
}

type ListBranchResponse struct {
	pagination.PageInfo
	Branches []Branch `json:"branches"`
}

type GetBranchRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateBranchRequest) (Branch, error)
	List(context.Context, ListBranchRequest) (ListBranchResponse, error)
	GetByID(context.Context, GetBranchRequest) (Branch, error)
	Update(context.Context, UpdateBranchRequest) (Branch, error)
	Delete(context.Context, GetBranchRequest) error

	// NextInvoiceNumber consumes the branch's sequence and returns the
	// formatted final number {prefix}{fyStart}{fyEnd}{seq, 4 digits}.
	// Concurrent calls for the same branch are serialized.
	NextInvoiceNumber(ctx context.Context, id string) (string, error)
}

var (
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidAddress = errors.New("invalid_address")
	ErrNotFound       = errors.New("not_found")
)
