package service

import (
	"context"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/tax/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
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
		log:   p.Log.Named("tax.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTaxRequest) (domain.Tax, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Tax{}, domain.ErrInvalidName
	}
	if req.Percentage.IsNegative() {
		return domain.Tax{}, domain.ErrInvalidPercentage
	}

	now := time.Now().UTC()
	tax := domain.Tax{
		ID:         s.genID.Generate(),
		Name:       name,
		Percentage: req.Percentage,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &tax); err != nil {
		return domain.Tax{}, err
	}
	return tax, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Tax, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	taxes := make([]domain.Tax, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		taxes = append(taxes, *item)
	}
	return taxes, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetTaxRequest) (domain.Tax, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Tax{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tax{}, err
	}
	if item == nil {
		return domain.Tax{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateTaxRequest) (domain.Tax, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Tax{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tax{}, err
	}
	if item == nil {
		return domain.Tax{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Tax{}, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Percentage != nil {
		if req.Percentage.IsNegative() {
			return domain.Tax{}, domain.ErrInvalidPercentage
		}
		item.Percentage = *req.Percentage
	}

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Tax{}, err
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.GetTaxRequest) error {
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

func (s *Service) FindByRate(ctx context.Context, rate decimal.Decimal) (*domain.Tax, error) {
	return s.repo.FindByRate(ctx, s.db, rate)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
