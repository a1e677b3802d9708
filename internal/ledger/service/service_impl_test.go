package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	benefitdomain "github.com/deckforge/deckforge/internal/benefit/domain"
	"github.com/deckforge/deckforge/internal/clock"
	"github.com/deckforge/deckforge/internal/ledger/domain"
	"github.com/deckforge/deckforge/internal/ledger/repository"
	dbpkg "github.com/deckforge/deckforge/pkg/db"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock, *gorm.DB) {
	t.Helper()

	db, err := dbpkg.NewTest()
	require.NoError(t, err)

	// A single connection serializes writers the way the production
	// store does with row locks.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.CreditBalance{}, &domain.CreditReservation{}))

	fake := clock.NewFakeClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return svc, fake, db
}

func newPrincipalID(t *testing.T) snowflake.ID {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node.Generate()
}

func TestMonthOfUsesUTCMonthBoundary(t *testing.T) {
	loc := time.FixedZone("UTC+13", 13*60*60)
	// Local time is already September; the bucket stays in August.
	local := time.Date(2026, 9, 1, 2, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), domain.MonthOf(local))
}

func TestConsumeWithoutGrantFails(t *testing.T) {
	svc, fake, _ := newTestService(t)
	ctx := context.Background()
	pid := newPrincipalID(t)

	_, err := svc.Consume(ctx, domain.ConsumeRequest{
		PrincipalID: pid,
		CreditType:  benefitdomain.CreditTypeDeck,
		Month:       fake.Now(),
		Amount:      1,
		RequestID:   uuid.NewString(),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientCredits)

	balance, err := svc.Balance(ctx, pid, benefitdomain.CreditTypeDeck, fake.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestGrantThenSequentialConsumes(t *testing.T) {
	svc, fake, _ := newTestService(t)
	ctx := context.Background()
	pid := newPrincipalID(t)
	month := fake.Now()

	granted, err := svc.GrantIfAbsent(ctx, pid, benefitdomain.CreditTypeDeck, month, 3)
	require.NoError(t, err)
	assert.True(t, granted)

	for want := 2; want >= 0; want-- {
		remaining, err := svc.Consume(ctx, domain.ConsumeRequest{
			PrincipalID: pid,
			CreditType:  benefitdomain.CreditTypeDeck,
			Month:       month,
			Amount:      1,
			RequestID:   uuid.NewString(),
		})
		require.NoError(t, err)
		assert.Equal(t, want, remaining)
	}

	_, err = svc.Consume(ctx, domain.ConsumeRequest{
		PrincipalID: pid,
		CreditType:  benefitdomain.CreditTypeDeck,
		Month:       month,
		Amount:      1,
		RequestID:   uuid.NewString(),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientCredits)

	balance, err := svc.Balance(ctx, pid, benefitdomain.CreditTypeDeck, month)
	require.NoError(t, err)
	assert.Equal(t, 0, balance, "balance must never go negative")
}

func TestGrantIfAbsentIsIdempotent(t *testing.T) {
	svc, fake, _ := newTestService(t)
	ctx := context.Background()
	pid := newPrincipalID(t)
	month := fake.Now()

	granted, err := svc.GrantIfAbsent(ctx, pid, benefitdomain.CreditTypeRoast, month, 5)
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = svc.GrantIfAbsent(ctx, pid, benefitdomain.CreditTypeRoast, month, 5)
	require.NoError(t, err)
	assert.False(t, granted, "second grant for the same bucket must be a no-op")

	balance, err := svc.Balance(ctx, pid, benefitdomain.CreditTypeRoast, month)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)
}

func TestGrantLandsOnTopOfAdminCredits(t *testing.T) {
	svc, fake, _ := newTestService(t)
	ctx := context.Background()
	pid := newPrincipalID(t)
	month := fake.Now()

	require.NoError(t, svc.AddCredits(ctx, pid, benefitdomain.CreditTypeDeck, month, 2))

	granted, err := svc.GrantIfAbsent(ctx, pid, benefitdomain.CreditTypeDeck, month, 4)
	require.NoError(t, err)
	assert.True(t, granted, "a bucket without the grant marker is still due its allotment")

	balance, err := svc.Balance(ctx, pid, benefitdomain.CreditTypeDeck, month)
	require.NoError(t, err)
	assert.Equal(t, 6, balance)

	granted, err = svc.GrantIfAbsent(ctx, pid, benefitdomain.CreditTypeDeck, month, 4)
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestConcurrentConsumesNeverOversell(t *testing.T) {
	svc, fake, _ := newTestService(t)
	ctx := context.Background()
	pid := newPrincipalID(t)
	month := fake.Now()

	const balance = 3
	const callers = 8

	_, err := svc.GrantIfAbsent(ctx, pid, benefitdomain.CreditTypeDeck, month, balance)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errCh := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Consume(ctx, domain.ConsumeRequest{
				PrincipalID: pid,
				CreditType:  benefitdomain.CreditTypeDeck,
				Month:       month,
				Amount:      1,
				RequestID:   uuid.NewString(),
			})
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	var successes, failures int
	for err := range errCh {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrInsufficientCredits):
			failures++
		default:
			t.Fatalf("unexpected consume error: %v", err)
		}
	}
	assert.Equal(t, balance, successes)
	assert.Equal(t, callers-balance, failures)

	final, err := svc.Balance(ctx, pid, benefitdomain.CreditTypeDeck, month)
	require.NoError(t, err)
	assert.Equal(t, 0, final)
}

func TestRefundRestoresExactBalanceOnce(t *testing.T) {
	svc, fake, _ := newTestService(t)
	ctx := context.Background()
	pid := newPrincipalID(t)
	month := fake.Now()

	_, err := svc.GrantIfAbsent(ctx, pid, benefitdomain.CreditTypeDeck, month, 1)
	require.NoError(t, err)

	requestID := uuid.NewString()
	remaining, err := svc.Consume(ctx, domain.ConsumeRequest{
		PrincipalID: pid,
		CreditType:  benefitdomain.CreditTypeDeck,
		Month:       month,
		Amount:      1,
		RequestID:   requestID,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	applied, err := svc.Refund(ctx, requestID)
	require.NoError(t, err)
	assert.True(t, applied)

	balance, err := svc.Balance(ctx, pid, benefitdomain.CreditTypeDeck, month)
	require.NoError(t, err)
	assert.Equal(t, 1, balance, "refund must restore the exact pre-consume balance")

	// A second release of the same reservation must not over-credit.
	applied, err = svc.Refund(ctx, requestID)
	require.NoError(t, err)
	assert.False(t, applied)

	balance, err = svc.Balance(ctx, pid, benefitdomain.CreditTypeDeck, month)
	require.NoError(t, err)
	assert.Equal(t, 1, balance)
}

func TestRefundUnknownReservationIsNoop(t *testing.T) {
	svc, _, _ := newTestService(t)

	applied, err := svc.Refund(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestBucketsAreIndependentAcrossMonths(t *testing.T) {
	svc, fake, _ := newTestService(t)
	ctx := context.Background()
	pid := newPrincipalID(t)

	august := fake.Now()
	_, err := svc.GrantIfAbsent(ctx, pid, benefitdomain.CreditTypeDeck, august, 2)
	require.NoError(t, err)

	fake.Advance(31 * 24 * time.Hour)
	september := fake.Now()
	require.NotEqual(t, domain.MonthOf(august), domain.MonthOf(september))

	granted, err := svc.GrantIfAbsent(ctx, pid, benefitdomain.CreditTypeDeck, september, 2)
	require.NoError(t, err)
	assert.True(t, granted, "a new month is a new bucket")

	balances, err := svc.Balances(ctx, pid, august)
	require.NoError(t, err)
	assert.Equal(t, 2, balances[benefitdomain.CreditTypeDeck])
}
