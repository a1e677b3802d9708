package migration

import (
	"github.com/deckforge/deckforge/internal/clock"
	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, clk clock.Clock) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if err := seed.EnsureDefaultBenefits(conn, clk); err != nil {
			return err
		}
		if cfg.SeedDevPrincipals {
			return seed.EnsureDevPrincipals(conn, clk)
		}
		return nil
	}),
)
