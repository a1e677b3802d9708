package admission

import (
	"context"
	"errors"
	"fmt"

	"github.com/deckforge/deckforge/internal/clock"
	ledgerdomain "github.com/deckforge/deckforge/internal/ledger/domain"
	principaldomain "github.com/deckforge/deckforge/internal/principal/domain"
	submissiondomain "github.com/deckforge/deckforge/internal/submission/domain"
	"github.com/google/uuid"
)

// LedgerPolicy admits by consuming one credit of the action's type from
// the current month's bucket.
type LedgerPolicy struct {
	ledger ledgerdomain.Service
	clock  clock.Clock
}

func NewLedgerPolicy(ledger ledgerdomain.Service, clk clock.Clock) *LedgerPolicy {
	return &LedgerPolicy{ledger: ledger, clock: clk}
}

func (p *LedgerPolicy) Name() string { return "ledger" }

func (p *LedgerPolicy) Admit(ctx context.Context, principal *principaldomain.Principal, action Action) (*Admission, error) {
	requestID := uuid.NewString()
	remaining, err := p.ledger.Consume(ctx, ledgerdomain.ConsumeRequest{
		PrincipalID: principal.ID,
		CreditType:  action.CreditType,
		Month:       p.clock.Now(),
		Amount:      1,
		RequestID:   requestID,
	})
	if err != nil {
		if errors.Is(err, ledgerdomain.ErrInsufficientCredits) {
			return nil, ErrNoCredits
		}
		return nil, fmt.Errorf("%w: %w", ErrCreditDeduction, err)
	}

	return &Admission{
		Status:    submissiondomain.StatusPending,
		RequestID: requestID,
		Remaining: remaining,
	}, nil
}

func (p *LedgerPolicy) Release(ctx context.Context, adm *Admission) error {
	if adm == nil || adm.RequestID == "" {
		return nil
	}
	_, err := p.ledger.Refund(ctx, adm.RequestID)
	return err
}
