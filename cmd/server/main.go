package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rl1809/inventory-service/internal/adapter/catalog"
	"github.com/rl1809/inventory-service/internal/adapter/handler"
	"github.com/rl1809/inventory-service/internal/adapter/storage"
	"github.com/rl1809/inventory-service/internal/core/service"
	"github.com/rl1809/inventory-service/internal/port"
	"github.com/rl1809/inventory-service/pkg/config"
	"github.com/rl1809/inventory-service/pkg/logger"
	"github.com/rl1809/inventory-service/pkg/metrics"
	"github.com/rl1809/inventory-service/pkg/migrate"
)

const serviceName = "inventory-service"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "server.exit", err)
		log.Fatalf("server exited: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	inventoryMetrics := metrics.NewInventoryMetrics(reg)

	store, closeStore, err := openStore(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logg.Error(ctx, "store.close", err)
		}
	}()

	catalogClient, err := catalog.NewClient(cfg.Catalog.URL, cfg.Catalog.APIKey,
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.Catalog.Timeout}),
		catalog.WithRetry(cfg.Catalog.MaxRetries, cfg.Catalog.RetryBackoff),
		catalog.WithLogger(logg),
		catalog.WithMetrics(inventoryMetrics),
	)
	if err != nil {
		return fmt.Errorf("catalog client: %w", err)
	}

	inventoryService := service.NewInventoryService(catalogClient, store,
		service.WithLogger(logg),
		service.WithMetrics(inventoryMetrics),
	)

	grpcServer, healthServer := handler.NewGRPCServer(
		handler.NewGRPCHandler(inventoryService, logg),
		handler.GRPCConfig{APIKey: cfg.Auth.APIKey, Logger: logg},
	)
	grpcAddr := ":" + cfg.App.GRPCPort
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", grpcAddr, err)
	}

	httpServer := &http.Server{
		Addr: ":" + cfg.App.HTTPPort,
		Handler: handler.NewRouter(handler.NewHTTPHandler(inventoryService, logg), handler.RouterConfig{
			APIKey:  cfg.Auth.APIKey,
			Logger:  logg,
			Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logg.Info(logg.WithField(gctx, "addr", grpcAddr), "grpc.listening")
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logg.Info(logg.WithField(gctx, "addr", httpServer.Addr), "http.listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logg.Info(ctx, "server.shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		healthServer.Shutdown()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "http.shutdown", err)
		}

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			grpcServer.Stop()
		}
		return nil
	})

	return g.Wait()
}

// openStore builds the configured InventoryStore and returns a closer for
// its underlying connection.
func openStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (port.InventoryStore, func() error, error) {
	noop := func() error { return nil }
	ctx = logg.WithField(ctx, "driver", cfg.Store.Driver)

	switch cfg.Store.Driver {
	case config.StoreMemory:
		logg.Warn(ctx, "store.memory.ephemeral")
		return storage.NewMemoryStore(), noop, nil

	case config.StoreMySQL:
		db, err := sql.Open("mysql", cfg.Store.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(cfg.Store.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Store.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Store.ConnMaxLifetime)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping mysql: %w", err)
		}
		if cfg.Store.AutoMigrate {
			if err := migrate.Up(ctx, db); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}
		logg.Info(ctx, "store.connected")
		return storage.NewMySQLAdapter(db), db.Close, nil

	case config.StoreRedis:
		opts, err := redisOptions(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		logg.Info(ctx, "store.connected")
		return storage.NewRedisAdapter(rdb), rdb.Close, nil

	case config.StorePostgres, config.StoreSQLite:
		dialector := postgres.Open(cfg.Store.PostgresDSN)
		if cfg.Store.Driver == config.StoreSQLite {
			dialector = sqlite.Open(cfg.Store.SQLitePath)
		}
		gdb, err := gorm.Open(dialector, &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", cfg.Store.Driver, err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("unwrap %s: %w", cfg.Store.Driver, err)
		}
		sqlDB.SetMaxOpenConns(cfg.Store.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Store.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Store.ConnMaxLifetime)

		store := storage.NewGormStore(gdb)
		if cfg.Store.AutoMigrate {
			if err := store.AutoMigrate(ctx); err != nil {
				_ = sqlDB.Close()
				return nil, nil, err
			}
		}
		logg.Info(ctx, "store.connected")
		return store, sqlDB.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}

func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts.PoolSize = cfg.PoolSize
		return opts, nil
	}
	return &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}, nil
}
