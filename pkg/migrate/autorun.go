package migrate

import (
	"context"
	"fmt"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/config"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on boot when running in dev
// with MES_AUTO_MIGRATE enabled. Other environments migrate through
// cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	source, err := Source("")
	if err != nil {
		return err
	}
	m, err := New(sqlDB, source, logg)
	if err != nil {
		return err
	}

	logg.Info(ctx, "migrate.autorun_start")
	if err := m.Up(ctx); err != nil {
		return err
	}
	logg.Info(ctx, "migrate.autorun_done")
	return nil
}
