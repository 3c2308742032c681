package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dongkoo81/oracle-postgresql-migration/api/routes"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/documents"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/history"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/inventory"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/orders"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/products"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/quality"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/specs"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/config"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/metrics"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/migrate"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	services, err := buildServices(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
			promhttp.Handler(),
			services,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
		logg.Info(shutdownCtx, "api server shut down gracefully")
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (routes.Services, error) {
	conn := dbClient.DB()
	productRepo := products.NewRepository(conn)
	inventoryRepo := inventory.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)

	productService, err := products.NewService(productRepo, inventoryRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	inventoryService, err := inventory.NewService(inventoryRepo)
	if err != nil {
		return routes.Services{}, err
	}
	ordersService, err := orders.NewService(
		ordersRepo,
		dbClient,
		orders.NewProductLookup(productRepo),
		orders.NewInventoryStore(inventoryRepo),
		orders.NewAvailabilityOracle(inventoryRepo),
		orders.NewProcedureTotalCalculator(),
		orders.Options{
			StrictStockCheck: cfg.FeatureFlags.StrictStockCheck,
			Metrics:          metrics.NewOrderMetrics(prometheus.DefaultRegisterer),
			Logger:           logg,
		},
	)
	if err != nil {
		return routes.Services{}, err
	}
	historyService, err := history.NewService(history.NewRepository(conn), ordersRepo)
	if err != nil {
		return routes.Services{}, err
	}
	documentService, err := documents.NewService(documents.NewRepository(conn), productRepo)
	if err != nil {
		return routes.Services{}, err
	}
	specService, err := specs.NewService(specs.NewRepository(conn), productRepo)
	if err != nil {
		return routes.Services{}, err
	}
	inspectionService, err := quality.NewService(quality.NewRepository(conn), productRepo)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Products:    productService,
		Inventory:   inventoryService,
		Orders:      ordersService,
		History:     historyService,
		Documents:   documentService,
		Specs:       specService,
		Inspections: inspectionService,
	}, nil
}
