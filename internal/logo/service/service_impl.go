package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/logo/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
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
	Cfg   config.Config
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	logoDir string
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("logo.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		logoDir: p.Cfg.LogoDir,
	}
}

func (s *Service) Upload(ctx context.Context, req domain.UploadLogoRequest) (domain.Logo, error) {
	fileName := strings.TrimSpace(req.FileName)
	if fileName == "" || len(req.Data) == 0 {
		return domain.Logo{}, domain.ErrInvalidFile
	}

	if err := os.MkdirAll(s.logoDir, 0o755); err != nil {
		return domain.Logo{}, err
	}

	// Stored under a generated name so uploads can never collide or
	// traverse outside the logo directory.
	storedName := uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
	storedPath := filepath.Join(s.logoDir, storedName)
	if err := os.WriteFile(storedPath, req.Data, 0o644); err != nil {
		return domain.Logo{}, err
	}

	now := time.Now().UTC()
	logo := domain.Logo{
		ID:          s.genID.Generate(),
		FileName:    filepath.Base(fileName),
		StoredPath:  storedPath,
		ContentType: strings.TrimSpace(req.ContentType),
		Size:        int64(len(req.Data)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &logo); err != nil {
		if removeErr := os.Remove(storedPath); removeErr != nil {
			s.log.Warn("orphaned logo file left on disk",
				zap.String("path", storedPath),
				zap.Error(removeErr),
			)
		}
		return domain.Logo{}, err
	}

	s.log.Info("logo uploaded",
		zap.String("logo_id", logo.ID.String()),
		zap.String("file_name", logo.FileName),
		zap.Int64("size", logo.Size),
	)
	return logo, nil
}

func (s *Service) Latest(ctx context.Context) (domain.Logo, error) {
	logo, err := s.repo.FindLatest(ctx, s.db)
	if err != nil {
		return domain.Logo{}, err
	}
	if logo == nil {
		return domain.Logo{}, domain.ErrNotFound
	}
	return *logo, nil
}
