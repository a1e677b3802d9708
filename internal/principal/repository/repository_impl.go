package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/deckforge/deckforge/internal/principal/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, p *domain.Principal) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO principals (id, username, role, tier, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Username,
		p.Role,
		p.Tier,
		p.Active,
		p.CreatedAt,
		p.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Principal, error) {
	var p domain.Principal
	err := db.WithContext(ctx).Raw(
		`SELECT id, username, role, tier, active, created_at, updated_at
		 FROM principals WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.Principal, error) {
	var p domain.Principal
	err := db.WithContext(ctx).Raw(
		`SELECT id, username, role, tier, active, created_at, updated_at
		 FROM principals WHERE username = ?`,
		username,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, p *domain.Principal) error {
	if p == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE principals
		 SET role = ?, tier = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		p.Role,
		p.Tier,
		p.Active,
		p.UpdatedAt,
		p.ID,
	).Error
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB, afterID snowflake.ID, limit int) ([]domain.Principal, error) {
	var items []domain.Principal
	err := db.WithContext(ctx).Raw(
		`SELECT id, username, role, tier, active, created_at, updated_at
		 FROM principals
		 WHERE active = ? AND id > ?
		 ORDER BY id
		 LIMIT ?`,
		true,
		afterID,
		limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
