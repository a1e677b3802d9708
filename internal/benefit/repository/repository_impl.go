package repository

import (
	"context"

	"github.com/deckforge/deckforge/internal/benefit/domain"
	"github.com/deckforge/deckforge/internal/hierarchy"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindAllotment(ctx context.Context, db *gorm.DB, tier hierarchy.Tier, creditType domain.CreditType) (int, bool, error) {
	var row struct {
		ID               int64
		MonthlyAllotment int
	}
	err := db.WithContext(ctx).Raw(
		`SELECT id, monthly_allotment FROM tier_benefits
		 WHERE tier = ? AND credit_type = ?`,
		tier,
		creditType,
	).Scan(&row).Error
	if err != nil {
		return 0, false, err
	}
	if row.ID == 0 {
		return 0, false, nil
	}
	return row.MonthlyAllotment, true, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, benefit *domain.TierBenefit) error {
	if benefit == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO tier_benefits (id, tier, credit_type, monthly_allotment, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (tier, credit_type) DO UPDATE
		 SET monthly_allotment = excluded.monthly_allotment,
		     updated_at = excluded.updated_at`,
		benefit.ID,
		benefit.Tier,
		benefit.CreditType,
		benefit.MonthlyAllotment,
		benefit.CreatedAt,
		benefit.UpdatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.TierBenefit, error) {
	var items []domain.TierBenefit
	err := db.WithContext(ctx).Raw(
		`SELECT id, tier, credit_type, monthly_allotment, created_at, updated_at
		 FROM tier_benefits
		 ORDER BY tier, credit_type`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DistinctCreditTypes(ctx context.Context, db *gorm.DB) ([]domain.CreditType, error) {
	var types []domain.CreditType
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT credit_type FROM tier_benefits ORDER BY credit_type`,
	).Scan(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}
