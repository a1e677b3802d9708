package domain

import (
	"context"
	"errors"

	"github.com/deckforge/deckforge/internal/hierarchy"
)

type Service interface {
	// AllotmentFor returns the monthly allotment for a tier and credit
	// type. Absent rows and the no-tier case both yield 0, not an error.
	AllotmentFor(ctx context.Context, tier hierarchy.Tier, creditType CreditType) (int, error)
	// SetBenefit upserts a benefit row. Future grants only.
	SetBenefit(ctx context.Context, req SetBenefitRequest) (*TierBenefit, error)
	List(ctx context.Context) ([]TierBenefit, error)
	// RegisteredCreditTypes lists every credit type any tier has a
	// benefit row for; the grant job iterates these.
	RegisteredCreditTypes(ctx context.Context) ([]CreditType, error)
}

type SetBenefitRequest struct {
	Tier             string `json:"tier"`
	CreditType       string `json:"credit_type"`
	MonthlyAllotment int    `json:"monthly_allotment"`
}

var (
	ErrInvalidTier       = errors.New("invalid_tier")
	ErrInvalidCreditType = errors.New("invalid_credit_type")
	ErrInvalidAllotment  = errors.New("invalid_allotment")
)
