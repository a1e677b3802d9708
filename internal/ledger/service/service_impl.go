package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	benefitdomain "github.com/deckforge/deckforge/internal/benefit/domain"
	"github.com/deckforge/deckforge/internal/clock"
	"github.com/deckforge/deckforge/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Balance(ctx context.Context, principalID snowflake.ID, creditType benefitdomain.CreditType, month time.Time) (int, error) {
	key := domain.BucketKey{PrincipalID: principalID, CreditType: creditType, Month: domain.MonthOf(month)}
	balance, _, err := s.repo.GetBalance(ctx, s.db, key)
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *Service) Balances(ctx context.Context, principalID snowflake.ID, month time.Time) (map[benefitdomain.CreditType]int, error) {
	rows, err := s.repo.ListBalances(ctx, s.db, principalID, domain.MonthOf(month))
	if err != nil {
		return nil, err
	}
	out := make(map[benefitdomain.CreditType]int, len(rows))
	for _, row := range rows {
		out[row.CreditType] = row.Balance
	}
	return out, nil
}

func (s *Service) GrantIfAbsent(ctx context.Context, principalID snowflake.ID, creditType benefitdomain.CreditType, month time.Time, amount int) (bool, error) {
	if amount < 0 {
		return false, domain.ErrInvalidAmount
	}
	key := domain.BucketKey{PrincipalID: principalID, CreditType: creditType, Month: domain.MonthOf(month)}
	granted, err := s.repo.InsertGrant(ctx, s.db, key, amount, s.clock.Now())
	if err != nil {
		return false, err
	}
	if granted {
		s.log.Debug("bucket granted",
			zap.String("principal_id", principalID.String()),
			zap.String("credit_type", string(creditType)),
			zap.Time("credit_month", key.Month),
			zap.Int("amount", amount),
		)
	}
	return granted, nil
}

// Consume performs the conditional decrement and records the matching
// reservation in one transaction: either the caller holds a durable
// reservation it can later release, or nothing changed.
func (s *Service) Consume(ctx context.Context, req domain.ConsumeRequest) (int, error) {
	if req.Amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	if strings.TrimSpace(req.RequestID) == "" {
		return 0, domain.ErrInvalidRequestID
	}

	key := domain.BucketKey{PrincipalID: req.PrincipalID, CreditType: req.CreditType, Month: domain.MonthOf(req.Month)}
	now := s.clock.Now()

	var remaining int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.repo.DecrementIfEnough(ctx, tx, key, req.Amount, now)
		if err != nil {
			return err
		}
		if !ok {
			// Covers both an exhausted bucket and one never granted.
			return domain.ErrInsufficientCredits
		}

		if err := s.repo.InsertReservation(ctx, tx, &domain.CreditReservation{
			ID:          req.RequestID,
			PrincipalID: req.PrincipalID,
			CreditMonth: key.Month,
			CreditType:  req.CreditType,
			Amount:      req.Amount,
			Status:      domain.ReservationConsumed,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		remaining, _, err = s.repo.GetBalance(ctx, tx, key)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.Debug("credits consumed",
		zap.String("principal_id", req.PrincipalID.String()),
		zap.String("credit_type", string(req.CreditType)),
		zap.String("request_id", req.RequestID),
		zap.Int("remaining", remaining),
	)
	return remaining, nil
}

func (s *Service) Refund(ctx context.Context, requestID string) (bool, error) {
	if strings.TrimSpace(requestID) == "" {
		return false, domain.ErrInvalidRequestID
	}
	now := s.clock.Now()

	var applied bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, ok, err := s.repo.ReleaseReservation(ctx, tx, requestID, now)
		if err != nil {
			return err
		}
		if !ok {
			// Already released, or never consumed. Nothing to restore.
			return nil
		}

		key := domain.BucketKey{PrincipalID: res.PrincipalID, CreditType: res.CreditType, Month: res.CreditMonth}
		if err := s.repo.IncrementBalance(ctx, tx, key, res.Amount, now); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if applied {
		s.log.Info("credits refunded", zap.String("request_id", requestID))
	} else {
		s.log.Debug("refund skipped, reservation not open", zap.String("request_id", requestID))
	}
	return applied, nil
}

func (s *Service) AddCredits(ctx context.Context, principalID snowflake.ID, creditType benefitdomain.CreditType, month time.Time, amount int) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	key := domain.BucketKey{PrincipalID: principalID, CreditType: creditType, Month: domain.MonthOf(month)}
	return s.repo.IncrementBalance(ctx, s.db, key, amount, s.clock.Now())
}
