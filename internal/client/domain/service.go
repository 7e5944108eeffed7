package domain

import (
	"context"
	"errors"

	"github.com/billforge/billforge/pkg/db/pagination"
)

type CreateClientRequest struct {
	Name    string
	Email   string
	Address string
	City    string
	State   string
	GSTIN   string
	Phone   string
}

type UpdateClientRequest struct {
	ID      string
	Name    *string
	Email   *string
	Address *string
	City    *string
	State   *string
	GSTIN   *string
	Phone   *string
}

type ListClientRequest struct {
	PageToken string
	PageSize  int
	Name      string
}

type ListClientResponse struct {
	pagination.PageInfo
	Clients []Client `json:"clients"`
}

type GetClientRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateClientRequest) (Client, error)
	List(context.Context, ListClientRequest) (ListClientResponse, error)
	GetByID(context.Context, GetClientRequest) (Client, error)
	Update(context.Context, UpdateClientRequest) (Client, error)
	Delete(context.Context, GetClientRequest) error
}

var (
	ErrInvalidID   = errors.New("invalid_id")
	ErrInvalidName = errors.New("invalid_name")
	ErrNotFound    = errors.New("not_found")
)
