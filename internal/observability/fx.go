package observability

import (
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/observability/logger"
	"github.com/billforge/billforge/internal/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		provideLoggerConfig,
		logger.New,
		provideRegistry,
		metrics.New,
	),
)

func provideLoggerConfig(cfg config.Config) logger.Config {
	return logger.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Version:     cfg.AppVersion,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	}
}

func provideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}
