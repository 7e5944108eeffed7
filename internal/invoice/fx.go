package invoice

import (
	"github.com/billforge/billforge/internal/invoice/repository"
	"github.com/billforge/billforge/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
