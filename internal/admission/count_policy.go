package admission

import (
	"context"
	"fmt"

	"github.com/deckforge/deckforge/internal/clock"
	"github.com/deckforge/deckforge/internal/hierarchy"
	principaldomain "github.com/deckforge/deckforge/internal/principal/domain"
	submissiondomain "github.com/deckforge/deckforge/internal/submission/domain"
)

// activeStatuses are the states that occupy a monthly slot under the
// count policy. Queued submissions wait outside the active window.
var activeStatuses = []submissiondomain.Status{
	submissiondomain.StatusPending,
	submissiondomain.StatusInProgress,
	submissiondomain.StatusCompleted,
}

var defaultMaxActive = map[hierarchy.Tier]int{
	hierarchy.TierCitizen:  1,
	hierarchy.TierKnight:   2,
	hierarchy.TierEmissary: 3,
	hierarchy.TierDuke:     5,
	hierarchy.TierWizard:   8,
	hierarchy.TierArchMage: 12,
}

// CountAndQueuePolicy admits by counting this month's submissions
// against a tier-specific active bound, overflowing into a bounded FIFO
// queue. Nothing is consumed, so Release is a no-op; a queued
// submission is promoted to pending by the external review workflow,
// never by this policy.
type CountAndQueuePolicy struct {
	submissions submissiondomain.Service
	clock       clock.Clock
	maxActive   map[hierarchy.Tier]int
	maxQueued   int
}

func NewCountAndQueuePolicy(submissions submissiondomain.Service, clk clock.Clock, maxQueued int) *CountAndQueuePolicy {
	if maxQueued <= 0 {
		maxQueued = 10
	}
	return &CountAndQueuePolicy{
		submissions: submissions,
		clock:       clk,
		maxActive:   defaultMaxActive,
		maxQueued:   maxQueued,
	}
}

func (p *CountAndQueuePolicy) Name() string { return "count" }

// MaxActiveFor returns the tier's active-slot bound; no tier means no
// slots.
func (p *CountAndQueuePolicy) MaxActiveFor(tier hierarchy.Tier) int {
	return p.maxActive[tier]
}

func (p *CountAndQueuePolicy) Admit(ctx context.Context, principal *principaldomain.Principal, _ Action) (*Admission, error) {
	now := p.clock.Now()

	active, err := p.submissions.CountInMonth(ctx, principal.ID, activeStatuses, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreditsUnavailable, err)
	}

	limit := p.MaxActiveFor(principal.Tier)
	if active < limit {
		remaining := limit - active - 1
		return &Admission{
			Status:    submissiondomain.StatusPending,
			Remaining: remaining,
		}, nil
	}

	queued, err := p.submissions.CountInMonth(ctx, principal.ID, []submissiondomain.Status{submissiondomain.StatusQueued}, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreditsUnavailable, err)
	}
	if queued < p.maxQueued {
		position := queued + 1
		return &Admission{
			Status:        submissiondomain.StatusQueued,
			QueuePosition: &position,
		}, nil
	}

	return nil, &MonthlyLimitError{MaxActive: limit, MaxQueued: p.maxQueued}
}

func (p *CountAndQueuePolicy) Release(context.Context, *Admission) error {
	// Counting consumed nothing; the failed create itself freed the slot.
	return nil
}
