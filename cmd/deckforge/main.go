package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/deckforge/deckforge/internal/clock"
	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/logger"
	"github.com/deckforge/deckforge/internal/migration"
	"github.com/deckforge/deckforge/internal/server"
	"github.com/deckforge/deckforge/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
