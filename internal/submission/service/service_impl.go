package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/deckforge/deckforge/internal/clock"
	ledgerdomain "github.com/deckforge/deckforge/internal/ledger/domain"
	"github.com/deckforge/deckforge/internal/submission/domain"
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
		log:   p.Log.Named("submission.service"),
		repo:  p.Repo,
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Submission, error) {
	submissionType := strings.TrimSpace(req.SubmissionType)
	if submissionType == "" {
		return nil, domain.ErrInvalidType
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	if !req.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	now := s.clock.Now()
	sub := &domain.Submission{
		ID:             s.genID.Generate(),
		PrincipalID:    req.PrincipalID,
		SubmissionType: submissionType,
		Status:         req.Status,
		QueuePosition:  req.QueuePosition,
		Title:          title,
		Metadata:       req.Metadata,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, s.db, sub); err != nil {
		return nil, err
	}

	s.log.Info("submission created",
		zap.String("submission_id", sub.ID.String()),
		zap.String("principal_id", req.PrincipalID.String()),
		zap.String("status", string(req.Status)),
	)
	return sub, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Submission, error) {
	sub, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrNotFound
	}
	return sub, nil
}

func (s *Service) ListByPrincipal(ctx context.Context, principalID snowflake.ID, limit int) ([]domain.Submission, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByPrincipal(ctx, s.db, principalID, limit)
}

func (s *Service) ListByStatus(ctx context.Context, status domain.Status, limit int) ([]domain.Submission, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByStatus(ctx, s.db, status, limit)
}

func (s *Service) CountInMonth(ctx context.Context, principalID snowflake.ID, statuses []domain.Status, month time.Time) (int, error) {
	from := ledgerdomain.MonthOf(month)
	to := from.AddDate(0, 1, 0)
	return s.repo.CountCreatedBetween(ctx, s.db, principalID, statuses, from, to)
}

func (s *Service) Transition(ctx context.Context, id snowflake.ID, status domain.Status) (*domain.Submission, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	ok, err := s.repo.UpdateStatus(ctx, s.db, id, status, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	s.log.Info("submission transitioned",
		zap.String("submission_id", id.String()),
		zap.String("status", string(status)),
	)
	return s.GetByID(ctx, id)
}
