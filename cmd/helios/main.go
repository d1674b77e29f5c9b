package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/internal/config"
	"github.com/helioscrm/helios/internal/migration"
	"github.com/helioscrm/helios/internal/observability/metrics"
	"github.com/helioscrm/helios/internal/server"
	"github.com/helioscrm/helios/pkg/db"
	"github.com/helioscrm/helios/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		metrics.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
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
