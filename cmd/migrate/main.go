// Command migrate manages the MES schema: goose migrations plus monthly
// partitions of quality_inspections.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dongkoo81/oracle-postgresql-migration/internal/quality"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/config"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
	months  int
}

func main() {
	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|create|validate|partitions")
	flag.StringVar(&opts.dir, "dir", "", "migrations directory; empty uses the embedded set ("+migrate.DefaultDir+" for create and validate)")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.IntVar(&opts.months, "months", 3, "months after the current one to partition for -cmd=partitions")
	flag.Parse()

	_ = godotenv.Load()

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", opts.cmd, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	// create and validate only touch files and need no config.
	fileDir := opts.dir
	if fileDir == "" {
		fileDir = migrate.DefaultDir
	}
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("-name is required")
		}
		path, err := migrate.CreateSQLMigration(fileDir, opts.name)
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(fileDir); err != nil {
			return err
		}
		fmt.Println("migrations valid")
		return nil
	case "up", "down", "status", "version", "partitions":
	default:
		return fmt.Errorf("unknown command %q", opts.cmd)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithField(ctx, "cmd", opts.cmd)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer dbClient.Close()

	if opts.cmd == "partitions" {
		return ensurePartitions(ctx, quality.NewRepository(dbClient.DB()), opts.months)
	}

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return err
	}
	source, err := migrate.Source(opts.dir)
	if err != nil {
		return err
	}
	migrator, err := migrate.New(sqlDB, source, logg)
	if err != nil {
		return err
	}

	switch opts.cmd {
	case "up":
		return migrator.Up(ctx)
	case "down":
		return migrator.Down(ctx)
	case "status":
		return migrator.Status(ctx, os.Stdout)
	case "version":
		if opts.version == "" {
			return errors.New("-version is required")
		}
		return migrator.To(ctx, opts.version)
	}
	return fmt.Errorf("unknown command %q", opts.cmd)
}

type partitioner interface {
	EnsureMonthlyPartition(ctx context.Context, month time.Time) (string, error)
}

// ensurePartitions creates the current month's partition and the following
// months.
func ensurePartitions(ctx context.Context, repo partitioner, months int) error {
	y, m, _ := time.Now().UTC().Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i <= months; i++ {
		name, err := repo.EnsureMonthlyPartition(ctx, first.AddDate(0, i, 0))
		if err != nil {
			return err
		}
		fmt.Println("partition ready:", name)
	}
	return nil
}
