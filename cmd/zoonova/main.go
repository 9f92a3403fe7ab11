package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/zoonova/internal/clock"
	"github.com/smallbiznis/zoonova/internal/config"
	"github.com/smallbiznis/zoonova/internal/events"
	"github.com/smallbiznis/zoonova/internal/migration"
	"github.com/smallbiznis/zoonova/internal/notification"
	"github.com/smallbiznis/zoonova/internal/observability"
	"github.com/smallbiznis/zoonova/internal/providers"
	"github.com/smallbiznis/zoonova/internal/seed"
	"github.com/smallbiznis/zoonova/internal/server"
	"github.com/smallbiznis/zoonova/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Outbound side effects
		providers.Module,
		events.Module,
		notification.Module,

		// Schema and seed data, then the HTTP surface with its domains
		seed.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
