// Package grantjob provisions each active principal's monthly credit
// buckets. The job is idempotent per calendar month: re-runs and
// overlapping instances converge on the same ledger state.
package grantjob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	benefitdomain "github.com/deckforge/deckforge/internal/benefit/domain"
	"github.com/deckforge/deckforge/internal/clock"
	ledgerdomain "github.com/deckforge/deckforge/internal/ledger/domain"
	"github.com/deckforge/deckforge/internal/metrics"
	principaldomain "github.com/deckforge/deckforge/internal/principal/domain"
	"github.com/deckforge/deckforge/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	Interval   time.Duration
	BatchSize  int
	JobTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = time.Hour
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 200
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 5 * time.Minute
	}
	return c
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	Principals principaldomain.Service
	Benefits   benefitdomain.Service
	Ledger     ledgerdomain.Service
	Metrics    *metrics.Metrics         `optional:"true"`
	Limiter    *ratelimit.SubmitLimiter `optional:"true"`
	Config     Config                   `optional:"true"`
}

type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	principals principaldomain.Service
	benefits   benefitdomain.Service
	ledger     ledgerdomain.Service
	metrics    *metrics.Metrics
	limiter    *ratelimit.SubmitLimiter
}

var ErrInvalidConfig = errors.New("grantjob: missing dependency")

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.Principals == nil || p.Benefits == nil || p.Ledger == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:        p.Log.Named("grantjob"),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		principals: p.Principals,
		benefits:   p.Benefits,
		ledger:     p.Ledger,
		metrics:    p.Metrics,
		limiter:    p.Limiter,
	}, nil
}

// Report summarizes one grant run.
type Report struct {
	Month      time.Time `json:"month"`
	Principals int       `json:"principals"`
	Granted    int       `json:"granted"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
}

// RunMonthlyGrants provisions the current month's buckets for every
// active principal. One principal failing never blocks the rest; all
// per-principal errors are joined into the returned error.
func (s *Scheduler) RunMonthlyGrants(ctx context.Context) (Report, error) {
	month := ledgerdomain.MonthOf(s.clock.Now())
	report := Report{Month: month}

	creditTypes, err := s.benefits.RegisteredCreditTypes(ctx)
	if err != nil {
		return report, fmt.Errorf("list credit types: %w", err)
	}

	var errs []error
	var afterID snowflake.ID
	for {
		batch, err := s.principals.ListActive(ctx, afterID, s.cfg.BatchSize)
		if err != nil {
			return report, fmt.Errorf("list principals: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		for _, p := range batch {
			report.Principals++
			granted, skipped, err := s.grantPrincipal(ctx, p, creditTypes, month)
			report.Granted += granted
			report.Skipped += skipped
			if err != nil {
				report.Failed++
				s.countGrant(metrics.GrantResultFailed)
				s.log.Error("grant failed for principal",
					zap.String("principal_id", p.ID.String()),
					zap.Error(err),
				)
				errs = append(errs, fmt.Errorf("principal %s: %w", p.ID, err))
			}
		}

		afterID = batch[len(batch)-1].ID
	}

	s.log.Info("monthly grant run finished",
		zap.Time("month", month),
		zap.Int("principals", report.Principals),
		zap.Int("granted", report.Granted),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, errors.Join(errs...)
}

func (s *Scheduler) grantPrincipal(ctx context.Context, p principaldomain.Principal, creditTypes []benefitdomain.CreditType, month time.Time) (granted, skipped int, err error) {
	for _, creditType := range creditTypes {
		allotment, err := s.benefits.AllotmentFor(ctx, p.Tier, creditType)
		if err != nil {
			return granted, skipped, fmt.Errorf("allotment %s: %w", creditType, err)
		}
		if allotment == 0 {
			skipped++
			s.countGrant(metrics.GrantResultSkipped)
			continue
		}

		applied, err := s.ledger.GrantIfAbsent(ctx, p.ID, creditType, month, allotment)
		if err != nil {
			return granted, skipped, fmt.Errorf("grant %s: %w", creditType, err)
		}
		if applied {
			granted++
			s.countGrant(metrics.GrantResultGranted)
		} else {
			skipped++
			s.countGrant(metrics.GrantResultSkipped)
		}
	}
	return granted, skipped, nil
}

func (s *Scheduler) countGrant(result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.GrantResults.WithLabelValues(result).Inc()
}
