package controllers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/dongkoo81/oracle-postgresql-migration/api/responses"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/config"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

const (
	envHeader    = "X-MES-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is satisfied by the database and Redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

type poolStater interface {
	Stats() (sql.DBStats, error)
}

type dependency struct {
	name   string
	pinger Pinger
}

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Pool   *poolUsage        `json:"db_pool,omitempty"`
}

type poolUsage struct {
	Open    int `json:"open"`
	InUse   int `json:"in_use"`
	Idle    int `json:"idle"`
	MaxOpen int `json:"max_open"`
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings Postgres then Redis. Every dependency is checked even
// after a failure so the log shows the full picture; the response names the
// first one that failed. A nil pinger is skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP Pinger, redisP Pinger) http.HandlerFunc {
	deps := []dependency{{"postgres", dbP}, {"redis", redisP}}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		report := readiness{Status: "ready", Checks: map[string]string{}}
		var failed []string
		var errs error
		for _, dep := range deps {
			if dep.pinger == nil {
				continue
			}
			if err := dep.pinger.Ping(ctx); err != nil {
				report.Checks[dep.name] = "down"
				failed = append(failed, dep.name)
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", dep.name, err))
				continue
			}
			report.Checks[dep.name] = "ok"
		}

		if errs != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, errs, failed[0]+" unavailable").
					WithDetails(map[string]any{"dependency": failed[0], "failed": failed}))
			return
		}
		if stater, ok := dbP.(poolStater); ok {
			if stats, err := stater.Stats(); err == nil {
				report.Pool = &poolUsage{
					Open:    stats.OpenConnections,
					InUse:   stats.InUse,
					Idle:    stats.Idle,
					MaxOpen: stats.MaxOpenConnections,
				}
			}
		}
		responses.WriteSuccess(w, report)
	}
}
