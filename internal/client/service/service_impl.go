package service

import (
	"context"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/client/domain"
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
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (domain.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Client{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:        s.genID.Generate(),
		Name:      name,
		Email:     strings.TrimSpace(req.Email),
		Address:   strings.TrimSpace(req.Address),
		City:      strings.TrimSpace(req.City),
		State:     strings.TrimSpace(req.State),
		GSTIN:     strings.TrimSpace(req.GSTIN),
		Phone:     strings.TrimSpace(req.Phone),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		return domain.Client{}, err
	}
	return client, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClientRequest) (domain.ListClientResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListClientFilter{
		Name: strings.TrimSpace(req.Name),
	}, pagination.Pagination{PageToken: req.PageToken, PageSize: pageSize})
	if err != nil {
		return domain.ListClientResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(client *domain.Client) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: client.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	clients := make([]domain.Client, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		clients = append(clients, *item)
	}

	resp := domain.ListClientResponse{Clients: clients}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetClientRequest) (domain.Client, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Client{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateClientRequest) (domain.Client, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Client{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Client{}, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Email != nil {
		item.Email = strings.TrimSpace(*req.Email)
	}
	if req.Address != nil {
		item.Address = strings.TrimSpace(*req.Address)
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
	if req.Phone != nil {
		item.Phone = strings.TrimSpace(*req.Phone)
	}

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Client{}, err
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.GetClientRequest) error {
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
