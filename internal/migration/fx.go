package migration

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/floorops/floorops/internal/config"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(cfg config.Config, log *zap.Logger, conn *gorm.DB) error {
		if cfg.DBType != "postgres" {
			log.Warn("skipping embedded migrations for non-postgres backend",
				zap.String("db_type", cfg.DBType))
			return nil
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
