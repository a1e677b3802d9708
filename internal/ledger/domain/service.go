package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	benefitdomain "github.com/deckforge/deckforge/internal/benefit/domain"
)

type Service interface {
	// Balance returns the remaining credits in a bucket, 0 when the
	// bucket was never granted.
	Balance(ctx context.Context, principalID snowflake.ID, creditType benefitdomain.CreditType, month time.Time) (int, error)
	// Balances returns every bucket the principal holds for the month.
	Balances(ctx context.Context, principalID snowflake.ID, month time.Time) (map[benefitdomain.CreditType]int, error)
	// GrantIfAbsent provisions the bucket's monthly allotment exactly
	// once per (principal, month, credit type). Returns whether this
	// call performed the grant.
	GrantIfAbsent(ctx context.Context, principalID snowflake.ID, creditType benefitdomain.CreditType, month time.Time, amount int) (bool, error)
	// Consume atomically decrements the bucket and records a
	// reservation under req.RequestID. ErrInsufficientCredits when the
	// balance cannot cover the amount; state is untouched in that case.
	Consume(ctx context.Context, req ConsumeRequest) (remaining int, err error)
	// Refund releases the reservation recorded by Consume and restores
	// its amount. Releasing an already-released or unknown reservation
	// is a no-op; the bool reports whether credits actually moved.
	Refund(ctx context.Context, requestID string) (bool, error)
	// AddCredits is an administrative adjustment: an unconditional
	// increment with no reservation, outside the grant idempotency.
	AddCredits(ctx context.Context, principalID snowflake.ID, creditType benefitdomain.CreditType, month time.Time, amount int) error
}

type ConsumeRequest struct {
	PrincipalID snowflake.ID
	CreditType  benefitdomain.CreditType
	Month       time.Time
	Amount      int
	// RequestID anchors the reservation; callers pass one ID per
	// protected action so a later refund cannot double-apply.
	RequestID string
}

var (
	ErrInsufficientCredits = errors.New("insufficient_credits")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidRequestID    = errors.New("invalid_request_id")
)
