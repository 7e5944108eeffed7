package logo

import (
	"github.com/billforge/billforge/internal/logo/repository"
	"github.com/billforge/billforge/internal/logo/service"
	"go.uber.org/fx"
)

var Module = fx.Module("logo.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
