package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, sub *Submission) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Submission, error)
	ListByPrincipal(ctx context.Context, db *gorm.DB, principalID snowflake.ID, limit int) ([]Submission, error)
	ListByStatus(ctx context.Context, db *gorm.DB, status Status, limit int) ([]Submission, error)
	CountCreatedBetween(ctx context.Context, db *gorm.DB, principalID snowflake.ID, statuses []Status, from, to time.Time) (int, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, now time.Time) (bool, error)
}
