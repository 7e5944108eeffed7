package branch

import (
	"github.com/billforge/billforge/internal/branch/repository"
	"github.com/billforge/billforge/internal/branch/service"
	"go.uber.org/fx"
)

var Module = fx.Module("branch.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
