package tax

import (
	"github.com/billforge/billforge/internal/tax/repository"
	"github.com/billforge/billforge/internal/tax/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tax.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
