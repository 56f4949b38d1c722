package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/floorops/floorops/internal/clock"
	"github.com/floorops/floorops/internal/config"
	"github.com/floorops/floorops/internal/logger"
	"github.com/floorops/floorops/internal/migration"
	"github.com/floorops/floorops/internal/server"
	"github.com/floorops/floorops/pkg/db"
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
