package migration

import (
	"context"

	"github.com/smallbiznis/zoonova/internal/config"
	"github.com/smallbiznis/zoonova/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, seeder *seed.Seeder, log *zap.Logger) error {
		if err := Apply(conn); err != nil {
			return err
		}
		log.Named("migrations").Info("schema up to date", zap.String("dialect", conn.Dialector.Name()))
		return seeder.Run(context.Background(), cfg.Bootstrap)
	}),
)
