// Package main applies the identity store migrations.
//
// Usage:
//
//	migrate [up|down|status|version]
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"

	"github.com/jobber-dev/jobber/internal/config"
	"github.com/jobber-dev/jobber/internal/migrate"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall migration timeout")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: migrate [-timeout=5m] [up|down|status|version]")
	}
	flag.Parse()

	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log, flag.Arg(0), *timeout); err != nil {
		log.Error("migration failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(log *zap.Logger, command string, timeout time.Duration) error {
	var dbCfg config.DatabaseConfig
	if err := env.Parse(&dbCfg); err != nil {
		return fmt.Errorf("parse database config: %w", err)
	}

	db := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dbCfg.DSN())))
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("connect to %s:%d: %w", dbCfg.Host, dbCfg.Port, err)
	}

	m := migrate.NewMigrator(db, log)

	switch command {
	case "", "up":
		return m.Up(ctx)
	case "down":
		return m.Down(ctx)
	case "status":
		return m.Status(ctx)
	case "version":
		v, err := m.Version(ctx)
		if err != nil {
			return err
		}
		log.Info("current database version", zap.Int64("version", v))
		return nil
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}
