// Command cron-worker runs MES maintenance jobs on a fixed interval: monthly
// partitions for quality inspections, then the daily summary view refresh.
// A Redis lease keeps replicas from running the same cycle twice.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dongkoo81/oracle-postgresql-migration/internal/cron"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/history"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/orders"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/products"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/quality"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/config"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/metrics"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/migrate"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/redis"
)

const serviceName = "cron-worker"

func main() {
	bootLog := logger.New(logger.Options{ServiceName: serviceName})
	if err := godotenv.Load(); err != nil {
		bootLog.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		bootLog.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceName

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shut down")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer closeWith(logg, "database", dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer closeWith(logg, "redis", redisClient.Close)

	service, err := buildService(cfg, logg, dbClient, redisClient)
	if err != nil {
		return err
	}

	logg.Info(logg.WithField(ctx, "interval", cfg.Cron.Interval.String()), "cron worker started")
	return service.Run(ctx)
}

func buildService(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*cron.Service, error) {
	conn := dbClient.DB()
	historyService, err := history.NewService(history.NewRepository(conn), orders.NewRepository(conn))
	if err != nil {
		return nil, fmt.Errorf("history service: %w", err)
	}
	inspectionService, err := quality.NewService(quality.NewRepository(conn), products.NewRepository(conn))
	if err != nil {
		return nil, fmt.Errorf("inspection service: %w", err)
	}

	partitionJob, err := cron.NewPartitionJob(cron.PartitionJobParams{
		Logger:      logg,
		Quality:     inspectionService,
		MonthsAhead: cfg.Cron.PartitionMonthsAhead,
	})
	if err != nil {
		return nil, err
	}
	summaryJob, err := cron.NewDailySummaryJob(cron.DailySummaryJobParams{
		Logger:       logg,
		History:      historyService,
		Concurrently: cfg.Cron.ConcurrentRefresh,
	})
	if err != nil {
		return nil, err
	}
	// Partition upkeep runs first each cycle.
	registry, err := cron.NewRegistry(partitionJob, summaryJob)
	if err != nil {
		return nil, err
	}

	lease := cron.LeaseTTL(cfg.Cron.JobTimeout, cfg.Cron.Interval, len(registry.Jobs()))
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(serviceName, cfg.App.Env), lease)
	if err != nil {
		return nil, err
	}
	return cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   registry,
		Lock:       lock,
		Metrics:    metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval:   cfg.Cron.Interval,
		JobTimeout: cfg.Cron.JobTimeout,
	})
}

func closeWith(logg *logger.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logg.Error(context.Background(), "error closing "+name, err)
	}
}
