package domain

import (
	"context"

	"github.com/deckforge/deckforge/internal/hierarchy"
	"gorm.io/gorm"
)

type Repository interface {
	FindAllotment(ctx context.Context, db *gorm.DB, tier hierarchy.Tier, creditType CreditType) (int, bool, error)
	Upsert(ctx context.Context, db *gorm.DB, benefit *TierBenefit) error
	List(ctx context.Context, db *gorm.DB) ([]TierBenefit, error)
	DistinctCreditTypes(ctx context.Context, db *gorm.DB) ([]CreditType, error)
}
