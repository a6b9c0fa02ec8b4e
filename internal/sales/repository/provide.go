package repository

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/retailsales/internal/config"
	"github.com/smallbiznis/retailsales/internal/migration"
	"github.com/smallbiznis/retailsales/internal/sales/domain"
	"github.com/smallbiznis/retailsales/pkg/db"
	"github.com/smallbiznis/retailsales/pkg/docdb"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module wires the store selected by cfg.StoreBackend. The mongo and sql
// stores also provide domain.Writer for ingestion.
func Module(cfg config.Config) fx.Option {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		return fx.Options(
			docdb.Module,
			fx.Provide(fx.Annotate(NewMongo,
				fx.As(new(domain.Repository), new(domain.Writer)),
			)),
		)
	case config.BackendSQL:
		return fx.Options(
			db.Module,
			migration.Module(Models()...),
			fx.Provide(newSnowflakeNode),
			fx.Provide(fx.Annotate(NewSQL,
				fx.As(new(domain.Repository), new(domain.Writer)),
			)),
		)
	default:
		return fx.Provide(provideMemory)
	}
}

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func provideMemory(cfg config.Config, log *zap.Logger) domain.Repository {
	return NewMemory(CSVSource{Path: cfg.DataFile, Log: log.Named("sales.csv")}, log)
}

// RequireWriter fails fast when the configured backend cannot be loaded by
// the ingestion command.
func RequireWriter(cfg config.Config) error {
	switch cfg.StoreBackend {
	case config.BackendMongo, config.BackendSQL:
		return nil
	default:
		return fmt.Errorf("store backend %q does not support ingestion; use %q or %q",
			cfg.StoreBackend, config.BackendMongo, config.BackendSQL)
	}
}
