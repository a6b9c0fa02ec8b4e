package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module migrates the schema for models when the app starts.
func Module(models ...any) fx.Option {
	return fx.Module("migrations",
		fx.Invoke(func(conn *gorm.DB) error {
			return Run(conn, models...)
		}),
	)
}
