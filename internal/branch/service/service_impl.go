package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/branch/domain"
	"github.com/billforge/billforge/internal/clock"
	"github.com/billforge/billforge/internal/fiscalyear"
	"github.com/billforge/billforge/internal/sequence"
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
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	keys  *sequence.KeyedMutex
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("branch.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		keys:  sequence.NewKeyedMutex(),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateBranchRequest) (domain.Branch, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Branch{}, domain.ErrInvalidName
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return domain.Branch{}, domain.ErrInvalidAddress
	}

	phoneCode := strings.TrimSpace(req.PhoneCode)
	if phoneCode == "" {
		phoneCode = "+91"
	}

	now := time.Now().UTC()
	branch := domain.Branch{
		ID:           s.genID.Generate(),
		Name:         name,
		Address:      address,
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
		GSTIN:        strings.TrimSpace(req.GSTIN),
		PhoneCode:    phoneCode,
		Phone:        strings.TrimSpace(req.Phone),
		Website:      strings.TrimSpace(req.Website),
		SeriesPrefix: strings.TrimSpace(req.SeriesPrefix),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &branch); err != nil {
		return domain.Branch{}, err
	}
	return branch, nil
}

func (s *Service) List(ctx context.Context, req domain.ListBranchRequest) (domain.ListBranchResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListBranchFilter{
		City:  strings.TrimSpace(req.City),
		State: strings.TrimSpace(req.State),
	}, pagination.Pagination{PageToken: req.PageToken, PageSize: pageSize})
	if err != nil {
		return domain.ListBranchResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(branch *domain.Branch) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: branch.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	branches := make([]domain.Branch, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		branches = append(branches, *item)
	}

	resp := domain.ListBranchResponse{Branches: branches}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetBranchRequest) (domain.Branch, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Branch{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Branch{}, err
	}
	if item == nil {
		return domain.Branch{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateBranchRequest) (domain.Branch, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Branch{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Branch{}, err
	}
	if item == nil {
		return domain.Branch{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Branch{}, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Address != nil {
		address := strings.TrimSpace(*req.Address)
		if address == "" {
			return domain.Branch{}, domain.ErrInvalidAddress
		}
		item.Address = address
	}
	if req.City != nil {
		item.City = strings.TrimSpace(*req.City)
	}
	if req.State != nil {
		item.State = strings.TrimSpace(*req.State)
	}
	if req.GSTIN != nil {
		item.GSTIN = strings.TrimSpace(*req.GSTIN)
	}
	if req.PhoneCode != nil {
		item.PhoneCode = strings.TrimSpace(*req.PhoneCode)
	}
	if req.Phone != nil {
		item.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Website != nil {
		item.Website = strings.TrimSpace(*req.Website)
	}
	if req.SeriesPrefix != nil {
		item.SeriesPrefix = strings.TrimSpace(*req.SeriesPrefix)
	}

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Branch{}, err
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.GetBranchRequest) error {
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

// NextInvoiceNumber performs the fiscal-year reset and the increment as two
// separate counter writes inside one serialized critical section, so every
// successful call is observable as exactly one increment.
func (s *Service) NextInvoiceNumber(ctx context.Context, rawID string) (string, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return "", err
	}

	unlock := s.keys.Lock("branch:" + id.String())
	defer unlock()

	var number string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		branch, err := s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if branch == nil {
			return domain.ErrNotFound
		}

		fy := fiscalyear.Of(s.clock.Now())
		fyStart := fy.Start()

		if branch.LastResetDate == nil || branch.LastResetDate.Before(fyStart) {
			branch.LastInvoiceNumber = 0
			branch.LastResetDate = &fyStart
			if err := s.repo.UpdateCounter(ctx, tx, branch); err != nil {
				return err
			}
			s.log.Info("branch sequence reset",
				zap.String("branch_id", branch.ID.String()),
				zap.String("fiscal_year", fy.Stamp()),
			)
		}

		branch.LastInvoiceNumber++
		if err := s.repo.UpdateCounter(ctx, tx, branch); err != nil {
			return err
		}

		number = fmt.Sprintf("%s%s%04d", branch.SeriesPrefix, fy.Stamp(), branch.LastInvoiceNumber)
		return nil
	})
	if err != nil {
		return "", err
	}

	return number, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
