package main

import (
	"github.com/billforge/billforge/internal/clock"
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/migration"
	"github.com/billforge/billforge/internal/server"
	"github.com/billforge/billforge/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
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
