package admission

import (
	"github.com/deckforge/deckforge/internal/clock"
	"github.com/deckforge/deckforge/internal/config"
	ledgerdomain "github.com/deckforge/deckforge/internal/ledger/domain"
	submissiondomain "github.com/deckforge/deckforge/internal/submission/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module wires the admission controller with the policy selected by
// configuration.
var Module = fx.Module("admission.service",
	fx.Provide(DefaultRegistry),
	fx.Provide(newPolicy),
	fx.Provide(NewService),
)

func newPolicy(cfg config.Config, log *zap.Logger, ledger ledgerdomain.Service, submissions submissiondomain.Service, clk clock.Clock) QuotaPolicy {
	switch cfg.QuotaPolicy {
	case config.QuotaPolicyCount:
		log.Info("admission using count-and-queue quota policy", zap.Int("max_queued", cfg.MaxQueued))
		return NewCountAndQueuePolicy(submissions, clk, cfg.MaxQueued)
	default:
		log.Info("admission using ledger quota policy")
		return NewLedgerPolicy(ledger, clk)
	}
}
