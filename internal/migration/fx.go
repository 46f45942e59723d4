package migration

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module runs migrations when the application starts. Only the migrate
// command includes it; serve relies on the bootstrap schema gate.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, log *zap.Logger) error {
		return RunMigrations(conn, log.Named("migration"))
	}),
)
