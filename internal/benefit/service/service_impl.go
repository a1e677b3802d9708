package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/deckforge/deckforge/internal/benefit/domain"
	"github.com/deckforge/deckforge/internal/clock"
	"github.com/deckforge/deckforge/internal/hierarchy"
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
		log:   p.Log.Named("benefit.service"),
		repo:  p.Repo,
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) AllotmentFor(ctx context.Context, tier hierarchy.Tier, creditType domain.CreditType) (int, error) {
	if !tier.Valid() {
		// No tier means no allotment, not a lookup failure.
		return 0, nil
	}
	amount, found, err := s.repo.FindAllotment(ctx, s.db, tier, creditType)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return amount, nil
}

func (s *Service) SetBenefit(ctx context.Context, req domain.SetBenefitRequest) (*domain.TierBenefit, error) {
	tier, ok := hierarchy.ParseTier(strings.TrimSpace(req.Tier))
	if !ok || tier == hierarchy.TierNone {
		return nil, domain.ErrInvalidTier
	}

	creditType := domain.CreditType(strings.TrimSpace(req.CreditType))
	if creditType == "" {
		return nil, domain.ErrInvalidCreditType
	}

	if req.MonthlyAllotment < 0 {
		return nil, domain.ErrInvalidAllotment
	}

	now := s.clock.Now()
	benefit := &domain.TierBenefit{
		ID:               s.genID.Generate(),
		Tier:             tier,
		CreditType:       creditType,
		MonthlyAllotment: req.MonthlyAllotment,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Upsert(ctx, s.db, benefit); err != nil {
		return nil, err
	}

	s.log.Info("tier benefit updated",
		zap.String("tier", string(tier)),
		zap.String("credit_type", string(creditType)),
		zap.Int("monthly_allotment", req.MonthlyAllotment),
	)
	return benefit, nil
}

func (s *Service) List(ctx context.Context) ([]domain.TierBenefit, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) RegisteredCreditTypes(ctx context.Context) ([]domain.CreditType, error) {
	return s.repo.DistinctCreditTypes(ctx, s.db)
}
