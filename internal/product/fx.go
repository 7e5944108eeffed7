package product

import (
	"github.com/billforge/billforge/internal/product/repository"
	"github.com/billforge/billforge/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
