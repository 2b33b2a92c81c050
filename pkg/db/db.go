package db

import (
	"fmt"
	"time"

	"github.com/smallbiznis/paylink/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var Module = fx.Module("db",
	fx.Provide(New),
)

// New opens the database from PAYLINK_DATABASE_DSN. An empty DSN falls back
// to a shared in-memory sqlite database so the service runs locally without
// provisioning postgres.
func New(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var (
		conn *gorm.DB
		err  error
	)
	if cfg.DatabaseDSN == "" {
		log.Warn("PAYLINK_DATABASE_DSN not set, using in-memory sqlite")
		conn, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), gormCfg)
	} else {
		conn, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return conn, nil
}
