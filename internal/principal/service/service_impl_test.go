package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/deckforge/deckforge/internal/clock"
	"github.com/deckforge/deckforge/internal/hierarchy"
	"github.com/deckforge/deckforge/internal/principal/domain"
	"github.com/deckforge/deckforge/internal/principal/repository"
	dbpkg "github.com/deckforge/deckforge/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Principal{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return svc, fake
}

func TestEnsureStampsInjectedClock(t *testing.T) {
	svc, fake := newService(t)

	p, err := svc.Ensure(context.Background(), "newcomer")
	require.NoError(t, err)
	assert.Equal(t, fake.Now(), p.CreatedAt)
	assert.Equal(t, fake.Now(), p.UpdatedAt)
}

func TestSetTierAdvancesUpdatedAt(t *testing.T) {
	svc, fake := newService(t)

	p, err := svc.Ensure(context.Background(), "newcomer")
	require.NoError(t, err)
	created := p.CreatedAt

	fake.Advance(48 * time.Hour)
	p, err = svc.SetTier(context.Background(), p.ID, hierarchy.TierKnight)
	require.NoError(t, err)
	assert.Equal(t, created, p.CreatedAt)
	assert.Equal(t, fake.Now(), p.UpdatedAt)
	assert.Equal(t, hierarchy.TierKnight, p.Tier)
}
