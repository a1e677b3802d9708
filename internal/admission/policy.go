package admission

import (
	"context"

	principaldomain "github.com/deckforge/deckforge/internal/principal/domain"
	submissiondomain "github.com/deckforge/deckforge/internal/submission/domain"
)

// Admission is a policy's verdict on one request: where the submission
// lands and, for the ledger policy, the reservation to release if the
// protected action later fails.
type Admission struct {
	Status        submissiondomain.Status
	QueuePosition *int
	RequestID     string
	Remaining     int
}

// QuotaPolicy decides whether a principal may perform one more
// protected action this month. Two mechanisms exist for the same
// resource: the credit ledger and the count-and-queue window. Which
// one is authoritative is an integrator decision via QUOTA_POLICY.
type QuotaPolicy interface {
	Name() string
	// Admit consumes quota (or assigns a queue slot) and is the only
	// step allowed to mutate quota state.
	Admit(ctx context.Context, p *principaldomain.Principal, action Action) (*Admission, error)
	// Release compensates a prior Admit after the protected action
	// failed durably. It must be safe to call at most once per Admit
	// and to no-op when the policy consumed nothing.
	Release(ctx context.Context, adm *Admission) error
}
