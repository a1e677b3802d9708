package principal

import (
	"github.com/deckforge/deckforge/internal/principal/repository"
	"github.com/deckforge/deckforge/internal/principal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("principal.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
