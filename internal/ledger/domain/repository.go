package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	benefitdomain "github.com/deckforge/deckforge/internal/benefit/domain"
	"gorm.io/gorm"
)

// BucketKey identifies one ledger bucket.
type BucketKey struct {
	PrincipalID snowflake.ID
	CreditType  benefitdomain.CreditType
	Month       time.Time
}

type Repository interface {
	GetBalance(ctx context.Context, db *gorm.DB, key BucketKey) (int, bool, error)
	ListBalances(ctx context.Context, db *gorm.DB, principalID snowflake.ID, month time.Time) ([]CreditBalance, error)
	// InsertGrant applies the monthly allotment unless the bucket was
	// already granted; reports whether the grant took effect.
	InsertGrant(ctx context.Context, db *gorm.DB, key BucketKey, amount int, now time.Time) (bool, error)
	// DecrementIfEnough is the single conditional update consume is
	// built on: decrement only where balance covers the amount.
	DecrementIfEnough(ctx context.Context, db *gorm.DB, key BucketKey, amount int, now time.Time) (bool, error)
	// IncrementBalance unconditionally adds credits, creating the
	// bucket row if it does not exist yet.
	IncrementBalance(ctx context.Context, db *gorm.DB, key BucketKey, amount int, now time.Time) error
	InsertReservation(ctx context.Context, db *gorm.DB, res *CreditReservation) error
	// ReleaseReservation flips a consumed reservation to released and
	// returns it; ok is false when there was nothing left to release.
	ReleaseReservation(ctx context.Context, db *gorm.DB, requestID string, now time.Time) (*CreditReservation, bool, error)
}
