package grantjob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	benefitdomain "github.com/deckforge/deckforge/internal/benefit/domain"
	benefitrepo "github.com/deckforge/deckforge/internal/benefit/repository"
	benefitservice "github.com/deckforge/deckforge/internal/benefit/service"
	"github.com/deckforge/deckforge/internal/clock"
	"github.com/deckforge/deckforge/internal/hierarchy"
	ledgerdomain "github.com/deckforge/deckforge/internal/ledger/domain"
	ledgerrepo "github.com/deckforge/deckforge/internal/ledger/repository"
	ledgerservice "github.com/deckforge/deckforge/internal/ledger/service"
	principaldomain "github.com/deckforge/deckforge/internal/principal/domain"
	principalrepo "github.com/deckforge/deckforge/internal/principal/repository"
	principalservice "github.com/deckforge/deckforge/internal/principal/service"
	dbpkg "github.com/deckforge/deckforge/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type jobHarness struct {
	db         *gorm.DB
	clock      *clock.FakeClock
	node       *snowflake.Node
	principals principaldomain.Service
	benefits   benefitdomain.Service
	ledger     ledgerdomain.Service
}

func newJobHarness(t *testing.T) *jobHarness {
	t.Helper()

	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&principaldomain.Principal{},
		&benefitdomain.TierBenefit{},
		&ledgerdomain.CreditBalance{},
		&ledgerdomain.CreditReservation{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))

	return &jobHarness{
		db:    db,
		clock: fake,
		node:  node,
		principals: principalservice.New(principalservice.Params{
			DB:    db,
			Log:   zap.NewNop(),
			GenID: node,
			Clock: fake,
			Repo:  principalrepo.Provide(),
		}),
		benefits: benefitservice.New(benefitservice.Params{
			DB:    db,
			Log:   zap.NewNop(),
			GenID: node,
			Clock: fake,
			Repo:  benefitrepo.Provide(),
		}),
		ledger: ledgerservice.New(ledgerservice.Params{
			DB:    db,
			Log:   zap.NewNop(),
			Clock: fake,
			Repo:  ledgerrepo.Provide(),
		}),
	}
}

func (h *jobHarness) scheduler(t *testing.T, ledger ledgerdomain.Service, batchSize int) *Scheduler {
	t.Helper()
	if ledger == nil {
		ledger = h.ledger
	}
	s, err := New(Params{
		Log:        zap.NewNop(),
		Clock:      h.clock,
		Principals: h.principals,
		Benefits:   h.benefits,
		Ledger:     ledger,
		Config:     Config{BatchSize: batchSize},
	})
	require.NoError(t, err)
	return s
}

func (h *jobHarness) member(t *testing.T, username string, tier hierarchy.Tier) *principaldomain.Principal {
	t.Helper()
	p, err := h.principals.Ensure(context.Background(), username)
	require.NoError(t, err)
	if tier != hierarchy.TierNone {
		p, err = h.principals.SetTier(context.Background(), p.ID, tier)
		require.NoError(t, err)
	}
	return p
}

func (h *jobHarness) setBenefit(t *testing.T, tier hierarchy.Tier, creditType benefitdomain.CreditType, allotment int) {
	t.Helper()
	_, err := h.benefits.SetBenefit(context.Background(), benefitdomain.SetBenefitRequest{
		Tier:             string(tier),
		CreditType:       string(creditType),
		MonthlyAllotment: allotment,
	})
	require.NoError(t, err)
}

func (h *jobHarness) balance(t *testing.T, p *principaldomain.Principal, creditType benefitdomain.CreditType) int {
	t.Helper()
	balance, err := h.ledger.Balance(context.Background(), p.ID, creditType, h.clock.Now())
	require.NoError(t, err)
	return balance
}

func (h *jobHarness) seedBenefits(t *testing.T) {
	t.Helper()
	h.setBenefit(t, hierarchy.TierCitizen, benefitdomain.CreditTypeDeck, 0)
	h.setBenefit(t, hierarchy.TierKnight, benefitdomain.CreditTypeDeck, 2)
	h.setBenefit(t, hierarchy.TierDuke, benefitdomain.CreditTypeDeck, 10)
	h.setBenefit(t, hierarchy.TierDuke, benefitdomain.CreditTypeRoast, 4)
}

// brokenLedger fails grants for a single principal while delegating the
// rest, to exercise partial-failure isolation.
type brokenLedger struct {
	ledgerdomain.Service
	victim snowflake.ID
}

func (b *brokenLedger) GrantIfAbsent(ctx context.Context, principalID snowflake.ID, creditType benefitdomain.CreditType, month time.Time, amount int) (bool, error) {
	if principalID == b.victim {
		return false, errors.New("balance row locked")
	}
	return b.Service.GrantIfAbsent(ctx, principalID, creditType, month, amount)
}

func TestRunMonthlyGrantsFillsBucketsByTier(t *testing.T) {
	h := newJobHarness(t)
	h.seedBenefits(t)

	citizen := h.member(t, "citizen", hierarchy.TierCitizen)
	knight := h.member(t, "knight", hierarchy.TierKnight)
	duke := h.member(t, "duke", hierarchy.TierDuke)
	lapsed := h.member(t, "lapsed", hierarchy.TierNone)

	report, err := h.scheduler(t, nil, 0).RunMonthlyGrants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.Principals)
	assert.Equal(t, 0, report.Failed)

	assert.Equal(t, 0, h.balance(t, citizen, benefitdomain.CreditTypeDeck))
	assert.Equal(t, 2, h.balance(t, knight, benefitdomain.CreditTypeDeck))
	assert.Equal(t, 10, h.balance(t, duke, benefitdomain.CreditTypeDeck))
	assert.Equal(t, 4, h.balance(t, duke, benefitdomain.CreditTypeRoast))
	assert.Equal(t, 0, h.balance(t, lapsed, benefitdomain.CreditTypeDeck))
}

func TestRunMonthlyGrantsIsIdempotent(t *testing.T) {
	h := newJobHarness(t)
	h.seedBenefits(t)
	duke := h.member(t, "duke", hierarchy.TierDuke)

	s := h.scheduler(t, nil, 0)
	first, err := s.RunMonthlyGrants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Granted)

	// Spend a credit, then re-run; the grant must not top the bucket up.
	_, err = h.ledger.Consume(context.Background(), ledgerdomain.ConsumeRequest{
		PrincipalID: duke.ID,
		CreditType:  benefitdomain.CreditTypeDeck,
		Month:       h.clock.Now(),
		Amount:      1,
		RequestID:   "req-idempotent",
	})
	require.NoError(t, err)

	second, err := s.RunMonthlyGrants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Granted)
	assert.Equal(t, 9, h.balance(t, duke, benefitdomain.CreditTypeDeck))
}

func TestRunMonthlyGrantsIsolatesFailures(t *testing.T) {
	h := newJobHarness(t)
	h.seedBenefits(t)

	victim := h.member(t, "victim", hierarchy.TierDuke)
	bystander := h.member(t, "bystander", hierarchy.TierKnight)

	s := h.scheduler(t, &brokenLedger{Service: h.ledger, victim: victim.ID}, 0)
	report, err := s.RunMonthlyGrants(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), victim.ID.String())

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 2, h.balance(t, bystander, benefitdomain.CreditTypeDeck))
	assert.Equal(t, 0, h.balance(t, victim, benefitdomain.CreditTypeDeck))
}

func TestRunMonthlyGrantsPagesThroughPrincipals(t *testing.T) {
	h := newJobHarness(t)
	h.seedBenefits(t)

	members := make([]*principaldomain.Principal, 0, 5)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		members = append(members, h.member(t, name, hierarchy.TierKnight))
	}

	report, err := h.scheduler(t, nil, 2).RunMonthlyGrants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, report.Principals)
	for _, m := range members {
		assert.Equal(t, 2, h.balance(t, m, benefitdomain.CreditTypeDeck))
	}
}

func TestRunMonthlyGrantsOpensFreshMonth(t *testing.T) {
	h := newJobHarness(t)
	h.seedBenefits(t)
	knight := h.member(t, "knight", hierarchy.TierKnight)

	s := h.scheduler(t, nil, 0)
	_, err := s.RunMonthlyGrants(context.Background())
	require.NoError(t, err)

	h.clock.Set(time.Date(2026, 9, 1, 0, 30, 0, 0, time.UTC))

	report, err := s.RunMonthlyGrants(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Month.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2, h.balance(t, knight, benefitdomain.CreditTypeDeck))

	// The August bucket is untouched by the September run.
	augBalance, err := h.ledger.Balance(context.Background(), knight.ID, benefitdomain.CreditTypeDeck,
		time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, augBalance)
}
