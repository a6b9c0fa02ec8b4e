package main

import (
	"github.com/smallbiznis/retailsales/internal/config"
	"github.com/smallbiznis/retailsales/internal/metricsexport"
	"github.com/smallbiznis/retailsales/internal/observability"
	"github.com/smallbiznis/retailsales/internal/ratelimit"
	"github.com/smallbiznis/retailsales/internal/sales"
	"github.com/smallbiznis/retailsales/internal/sales/repository"
	"github.com/smallbiznis/retailsales/internal/server"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	// the store is picked before the graph is built
	cfg := config.Load()

	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),

		config.Module,
		observability.Module,
		metricsexport.Module,
		ratelimit.Module,

		repository.Module(cfg),
		sales.Module,
		server.Module,
	)
	app.Run()
}
