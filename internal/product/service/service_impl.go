package service

import (
	"context"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/product/domain"
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
		log:   p.Log.Named("product.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, domain.ErrInvalidName
	}
	if req.UnitCost.IsNegative() {
		return domain.Product{}, domain.ErrInvalidUnitCost
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:        s.genID.Generate(),
		Name:      name,
		UnitCost:  req.UnitCost,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProductRequest) (domain.ListProductResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListProductFilter{
		Name: strings.TrimSpace(req.Name),
	}, pagination.Pagination{PageToken: req.PageToken, PageSize: pageSize})
	if err != nil {
		return domain.ListProductResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(product *domain.Product) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: product.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		products = append(products, *item)
	}

	resp := domain.ListProductResponse{Products: products}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetProductRequest) (domain.Product, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Product{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Product{}, err
	}
	if item == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateProductRequest) (domain.Product, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Product{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Product{}, err
	}
	if item == nil {
		return domain.Product{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.UnitCost != nil {
		if req.UnitCost.IsNegative() {
			return domain.Product{}, domain.ErrInvalidUnitCost
		}
		item.UnitCost = *req.UnitCost
	}

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Product{}, err
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.GetProductRequest) error {
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
