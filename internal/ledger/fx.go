package ledger

import (
	"github.com/deckforge/deckforge/internal/ledger/repository"
	"github.com/deckforge/deckforge/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
