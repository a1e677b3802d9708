package submission

import (
	"github.com/deckforge/deckforge/internal/submission/repository"
	"github.com/deckforge/deckforge/internal/submission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("submission.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
