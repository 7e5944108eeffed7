package client

import (
	"github.com/billforge/billforge/internal/client/repository"
	"github.com/billforge/billforge/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
