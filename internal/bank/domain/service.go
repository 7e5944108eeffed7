package domain

import (
	"context"
	"errors"

	"github.com/billforge/billforge/pkg/db/pagination"
)

type CreateBankAccountRequest struct {
	AccountName   string
	AccountNumber string
	IFSC          string
	BankName      string
	BranchName    string
}

type UpdateBankAccountRequest struct {
	ID            string
	AccountName   *string
	AccountNumber *string
	IFSC          *string
	BankName      *string
	BranchName    *string
}

type ListBankAccountRequest struct {
	PageToken string
	PageSize  int
}

type ListBankAccountResponse struct {
	pagination.PageInfo
	BankAccounts []BankAccount `json:"bank_accounts"`
}

type GetBankAccountRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateBankAccountRequest) (BankAccount, error)
	List(context.Context, ListBankAccountRequest) (ListBankAccountResponse, error)
	GetByID(context.Context, GetBankAccountRequest) (BankAccount, error)
	Update(context.Context, UpdateBankAccountRequest) (BankAccount, error)
	Delete(context.Context, GetBankAccountRequest) error
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidAccountName   = errors.New("invalid_account_name")
	ErrInvalidAccountNumber = errors.New("invalid_account_number")
	ErrNotFound             = errors.New("not_found")
)
