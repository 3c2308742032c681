package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/metrics"
)

const (
	defaultInterval = time.Hour
	leaseMargin     = time.Minute
)

type lockHolder interface {
	Holder(ctx context.Context) (string, error)
}

type leaseBound interface {
	TTL() time.Duration
}

// LeaseTTL sizes the cycle lease so that every job can use its full timeout.
// Zero durations fall back the way NewService does.
func LeaseTTL(jobTimeout, interval time.Duration, jobs int) time.Duration {
	if interval <= 0 {
		interval = defaultInterval
	}
	if jobTimeout <= 0 {
		jobTimeout = interval
	}
	if jobs < 1 {
		jobs = 1
	}
	return jobTimeout*time.Duration(jobs) + leaseMargin
}

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
	// JobTimeout bounds a single job run. Zero uses the interval.
	JobTimeout time.Duration
}

// Service runs the registered jobs once at startup and then every interval,
// holding the lock for the whole cycle.
type Service struct {
	logg       *logger.Logger
	registry   *Registry
	lock       Lock
	metrics    *metrics.CronJobMetrics
	interval   time.Duration
	jobTimeout time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry, _ = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	jobTimeout := params.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = interval
	}
	return &Service{
		logg:       params.Logger,
		registry:   registry,
		lock:       params.Lock,
		metrics:    params.Metrics,
		interval:   interval,
		jobTimeout: jobTimeout,
	}, nil
}

// Run blocks until ctx is canceled. Failed cycles are logged and retried on
// the next tick.
func (s *Service) Run(ctx context.Context) error {
	s.tick(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	if err := s.runCycle(ctx); err != nil {
		s.logg.Error(ctx, "cron.cycle_failed", err)
	}
}

// runCycle executes every job in order. A failing job does not stop the
// ones after it; the failures come back combined. The cycle is cut off when
// the lease would expire so two replicas never run at once.
func (s *Service) runCycle(ctx context.Context) error {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire cron lock: %w", err)
	}
	if !locked {
		logCtx := ctx
		if h, ok := s.lock.(lockHolder); ok {
			if holder, err := h.Holder(ctx); err == nil && holder != "" {
				logCtx = s.logg.WithField(ctx, "lock_holder", holder)
			}
		}
		s.logg.Info(logCtx, "cron.cycle_skipped_lock_held")
		return nil
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Error(ctx, "cron.lock_release_failed", err)
		}
	}()
	if lease, ok := s.lock.(leaseBound); ok && lease.TTL() > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, lease.TTL())
		defer cancel()
	}

	var errs error
	for _, job := range s.registry.Jobs() {
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}
		if err := s.runJob(ctx, job); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", job.Name(), err))
		}
	}
	return errs
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	jobCtx, cancel := context.WithTimeout(s.logg.WithJob(ctx, job.Name()), s.jobTimeout)
	defer cancel()

	start := time.Now()
	err := job.Run(jobCtx)
	elapsed := time.Since(start)

	logCtx := s.logg.WithField(jobCtx, "duration_ms", elapsed.Milliseconds())
	if s.metrics != nil {
		s.metrics.ObserveDuration(job.Name(), elapsed)
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncFailure(job.Name())
		}
		s.logg.Error(logCtx, "cron.job_failed", err)
		return err
	}
	if s.metrics != nil {
		s.metrics.IncSuccess(job.Name())
	}
	s.logg.Info(logCtx, "cron.job_completed")
	return nil
}
