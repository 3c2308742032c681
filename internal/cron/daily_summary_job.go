package cron

import (
	"context"
	"fmt"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
	"go.uber.org/multierr"
)

type dailySummaryRefresher interface {
	RefreshDailySummary(ctx context.Context, concurrently bool) error
}

// DailySummaryJobParams configure the materialized view refresh job.
type DailySummaryJobParams struct {
	Logger       *logger.Logger
	History      dailySummaryRefresher
	Concurrently bool
}

// NewDailySummaryJob refreshes mv_daily_production_summary each cycle.
func NewDailySummaryJob(params DailySummaryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.History == nil {
		return nil, fmt.Errorf("history service required")
	}
	return &dailySummaryJob{
		logg:         params.Logger,
		history:      params.History,
		concurrently: params.Concurrently,
	}, nil
}

type dailySummaryJob struct {
	logg         *logger.Logger
	history      dailySummaryRefresher
	concurrently bool
}

func (j *dailySummaryJob) Name() string { return "daily-summary-refresh" }

// Run refreshes the view. A concurrent refresh is rejected by Postgres until the
// view has been populated once, so it falls back to a blocking refresh.
func (j *dailySummaryJob) Run(ctx context.Context) error {
	if !j.concurrently {
		if err := j.history.RefreshDailySummary(ctx, false); err != nil {
			return fmt.Errorf("refresh daily summary: %w", err)
		}
		j.logg.Info(ctx, "daily summary refreshed")
		return nil
	}

	concurrentErr := j.history.RefreshDailySummary(ctx, true)
	if concurrentErr == nil {
		j.logg.Info(ctx, "daily summary refreshed concurrently")
		return nil
	}
	j.logg.Warn(j.logg.WithField(ctx, "error", concurrentErr.Error()), "concurrent refresh failed; retrying blocking refresh")
	if err := j.history.RefreshDailySummary(ctx, false); err != nil {
		return fmt.Errorf("refresh daily summary: %w", multierr.Append(concurrentErr, err))
	}
	j.logg.Info(ctx, "daily summary refreshed")
	return nil
}
