package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
	"go.uber.org/multierr"
)

const defaultPartitionMonthsAhead = 3

type partitionEnsurer interface {
	EnsurePartition(ctx context.Context, month time.Time) (string, error)
}

// PartitionJobParams configure the inspection partition upkeep job.
type PartitionJobParams struct {
	Logger      *logger.Logger
	Quality     partitionEnsurer
	MonthsAhead int
}

// NewPartitionJob keeps monthly quality_inspections partitions in place for
// the current month and the configured number of months ahead.
func NewPartitionJob(params PartitionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Quality == nil {
		return nil, fmt.Errorf("quality service required")
	}
	ahead := params.MonthsAhead
	if ahead <= 0 {
		ahead = defaultPartitionMonthsAhead
	}
	return &partitionJob{
		logg:    params.Logger,
		quality: params.Quality,
		ahead:   ahead,
		now:     time.Now,
	}, nil
}

type partitionJob struct {
	logg    *logger.Logger
	quality partitionEnsurer
	ahead   int
	now     func() time.Time
}

func (j *partitionJob) Name() string { return "inspection-partitions" }

func (j *partitionJob) Run(ctx context.Context) error {
	y, m, _ := j.now().UTC().Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)

	var errs error
	ensured := make([]string, 0, j.ahead+1)
	for i := 0; i <= j.ahead; i++ {
		name, err := j.quality.EnsurePartition(ctx, first.AddDate(0, i, 0))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		ensured = append(ensured, name)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"partitions":   ensured,
		"months_ahead": j.ahead,
		"failures":     len(multierr.Errors(errs)),
	})
	if errs != nil {
		return fmt.Errorf("ensure inspection partitions: %w", errs)
	}
	j.logg.Info(logCtx, "inspection partitions ensured")
	return nil
}
