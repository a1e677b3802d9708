package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, p *Principal) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Principal, error)
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*Principal, error)
	Update(ctx context.Context, db *gorm.DB, p *Principal) error
	ListActive(ctx context.Context, db *gorm.DB, afterID snowflake.ID, limit int) ([]Principal, error)
}
