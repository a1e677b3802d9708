package db

import (
	"fmt"

	"github.com/deckforge/deckforge/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Dialect builds the postgres dialector from config. Postgres is the
// only supported production store; month-bucket updates rely on its
// conditional UPDATE semantics.
func Dialect(cfg config.Config) gorm.Dialector {
	return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
	))
}
