package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"github.com/rl1809/inventory-service/pkg/config"
	"github.com/rl1809/inventory-service/pkg/logger"
	"github.com/rl1809/inventory-service/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|redo|reset")
	flag.Parse()

	cfg, err := config.LoadMigrate()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
	})

	db, err := sql.Open("mysql", cfg.Store.MySQLDSN)
	requireResource(ctx, logg, "database", err)
	defer db.Close()

	requireResource(ctx, logg, "database", db.PingContext(ctx))

	logg.Info(ctx, "migrate.start")
	if err := migrate.Run(ctx, db, *cmd, flag.Args()...); err != nil {
		logg.Error(ctx, "migrate.failed", err)
		db.Close()
		os.Exit(1)
	}
	logg.Info(ctx, "migrate.done")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", resource), "migrate.init_failed", err)
	fmt.Fprintf(os.Stderr, "failed to initialize %s: %v\n", resource, err)
	os.Exit(1)
}
