package benefit

import (
	"github.com/deckforge/deckforge/internal/benefit/repository"
	"github.com/deckforge/deckforge/internal/benefit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("benefit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
