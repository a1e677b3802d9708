package admission

import (
	"errors"
	"fmt"

	"github.com/deckforge/deckforge/internal/hierarchy"
)

var (
	// ErrAuthRequired: no resolved principal on the request.
	ErrAuthRequired = errors.New("auth_required")
	// ErrForbidden: role below the required minimum.
	ErrForbidden = errors.New("forbidden")
	// ErrNoCredits: the month's allowance is exhausted. Terminal, not
	// retryable.
	ErrNoCredits = errors.New("no_credits")
	// ErrCreditsUnavailable: the ledger could not be read. Distinct
	// from exhaustion; the caller may resubmit.
	ErrCreditsUnavailable = errors.New("credits_error")
	// ErrCreditDeduction: the consume call itself failed transiently.
	// Reported rather than retried, since blindly retrying a decrement
	// risks double-consumption.
	ErrCreditDeduction = errors.New("credit_deduction_error")
	// ErrSubmissionStore: the durable create failed after a successful
	// consume; the consumed credit has been refunded.
	ErrSubmissionStore = errors.New("database_error")
	// ErrInvalidSubmission: payload failed validation.
	ErrInvalidSubmission = errors.New("validation_error")
)

// TierRequiredError carries the required and current tier so the caller
// can render an actionable message.
type TierRequiredError struct {
	Required hierarchy.Tier
	Current  hierarchy.Tier
}

func (e *TierRequiredError) Error() string {
	current := string(e.Current)
	if current == "" {
		current = "none"
	}
	return fmt.Sprintf("tier_required: need %s, have %s", e.Required, current)
}

// MonthlyLimitError reports a full queue under the count policy.
type MonthlyLimitError struct {
	MaxActive int
	MaxQueued int
}

func (e *MonthlyLimitError) Error() string {
	return fmt.Sprintf("monthly_limit_reached: %d active and %d queued slots are full", e.MaxActive, e.MaxQueued)
}
