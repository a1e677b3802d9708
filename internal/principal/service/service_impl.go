package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/deckforge/deckforge/internal/clock"
	"github.com/deckforge/deckforge/internal/hierarchy"
	"github.com/deckforge/deckforge/internal/principal/domain"
	dbpkg "github.com/deckforge/deckforge/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("principal.service"),
		repo:  p.Repo,
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Ensure(ctx context.Context, username string) (*domain.Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrInvalidUsername
	}

	existing, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := s.clock.Now()
	created := &domain.Principal{
		ID:        s.genID.Generate(),
		Username:  username,
		Role:      hierarchy.RoleUser,
		Tier:      hierarchy.TierNone,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, s.db, created); err != nil {
		// Lost a race against a concurrent first login; the row exists.
		if dbpkg.IsDuplicateKeyErr(err) {
			return s.repo.FindByUsername(ctx, s.db, username)
		}
		return nil, err
	}

	s.log.Info("principal created",
		zap.String("principal_id", created.ID.String()),
		zap.String("username", username),
	)
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Principal, error) {
	p, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Service) SetRole(ctx context.Context, id snowflake.ID, role hierarchy.Role) (*domain.Principal, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Role = role
	p.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, p); err != nil {
		return nil, err
	}

	s.log.Info("principal role updated",
		zap.String("principal_id", id.String()),
		zap.String("role", string(role)),
	)
	return p, nil
}

func (s *Service) SetTier(ctx context.Context, id snowflake.ID, tier hierarchy.Tier) (*domain.Principal, error) {
	// TierNone is a legal assignment: subscription sync clears the tier
	// when a subscription lapses.
	if tier != hierarchy.TierNone && !tier.Valid() {
		return nil, domain.ErrInvalidTier
	}
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Tier = tier
	p.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, p); err != nil {
		return nil, err
	}

	s.log.Info("principal tier updated",
		zap.String("principal_id", id.String()),
		zap.String("tier", string(tier)),
	)
	return p, nil
}

func (s *Service) ListActive(ctx context.Context, afterID snowflake.ID, limit int) ([]domain.Principal, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListActive(ctx, s.db, afterID, limit)
}
