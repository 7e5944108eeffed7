package bank

import (
	"github.com/billforge/billforge/internal/bank/repository"
	"github.com/billforge/billforge/internal/bank/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bank.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
