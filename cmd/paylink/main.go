package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paylink/internal/clock"
	"github.com/smallbiznis/paylink/internal/config"
	"github.com/smallbiznis/paylink/internal/migration"
	"github.com/smallbiznis/paylink/internal/observability"
	"github.com/smallbiznis/paylink/internal/orderpayments"
	"github.com/smallbiznis/paylink/internal/payment"
	"github.com/smallbiznis/paylink/internal/server"
	"github.com/smallbiznis/paylink/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		clock.Module,
		db.Module,
		fx.Invoke(func(conn *gorm.DB) error {
			return migration.RunMigrations(context.Background(), conn)
		}),
		orderpayments.Module,
		payment.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
