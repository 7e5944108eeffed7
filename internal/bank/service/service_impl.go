package service

import (
	"context"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/bank/domain"
	"github.com/billforge/billforge/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("bank.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateBankAccountRequest) (domain.BankAccount, error) {
	accountName := strings.TrimSpace(req.AccountName)
	if accountName == "" {
		return domain.BankAccount{}, domain.ErrInvalidAccountName
	}
	accountNumber := strings.TrimSpace(req.AccountNumber)
	if accountNumber == "" {
		return domain.BankAccount{}, domain.ErrInvalidAccountNumber
	}

	now := time.Now().UTC()
	account := domain.BankAccount{
		ID:            s.genID.Generate(),
		AccountName:   accountName,
		AccountNumber: accountNumber,
		IFSC:          strings.TrimSpace(req.IFSC),
		BankName:      strings.TrimSpace(req.BankName),
		BranchName:    strings.TrimSpace(req.BranchName),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &account); err != nil {
		return domain.BankAccount{}, err
	}
	return account, nil
}

func (s *Service) List(ctx context.Context, req domain.ListBankAccountRequest) (domain.ListBankAccountResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, pagination.Pagination{PageToken: req.PageToken, PageSize: pageSize})
	if err != nil {
		return domain.ListBankAccountResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(account *domain.BankAccount) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: account.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	accounts := make([]domain.BankAccount, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		accounts = append(accounts, *item)
	}

	resp := domain.ListBankAccountResponse{BankAccounts: accounts}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetBankAccountRequest) (domain.BankAccount, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.BankAccount{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.BankAccount{}, err
	}
	if item == nil {
		return domain.BankAccount{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateBankAccountRequest) (domain.BankAccount, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.BankAccount{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.BankAccount{}, err
	}
	if item == nil {
		return domain.BankAccount{}, domain.ErrNotFound
	}

	if req.AccountName != nil {
		accountName := strings.TrimSpace(*req.AccountName)
		if accountName == "" {
			return domain.BankAccount{}, domain.ErrInvalidAccountName
		}
		item.AccountName = accountName
	}
	if req.AccountNumber != nil {
		accountNumber := strings.TrimSpace(*req.AccountNumber)
		if accountNumber == "" {
			return domain.BankAccount{}, domain.ErrInvalidAccountNumber
		}
		item.AccountNumber = accountNumber
	}
	if req.IFSC != nil {
		item.IFSC = strings.TrimSpace(*req.IFSC)
	}
	if req.BankName != nil {
		item.BankName = strings.TrimSpace(*req.BankName)
	}
	if req.BranchName != nil {
		item.BranchName = strings.TrimSpace(*req.BranchName)
	}

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.BankAccount{}, err
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.GetBankAccountRequest) error {
	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
