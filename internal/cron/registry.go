package cron

import (
	"context"
	"fmt"
	"strings"
)

// Job is one maintenance task of the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry keeps jobs in execution order. Names are unique because they label
// log entries and job metrics.
type Registry struct {
	jobs  []Job
	names map[string]struct{}
}

// NewRegistry registers jobs in the given order.
func NewRegistry(jobs ...Job) (*Registry, error) {
	r := &Registry{names: map[string]struct{}{}}
	for _, job := range jobs {
		if err := r.Register(job); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends job to the cycle.
func (r *Registry) Register(job Job) error {
	if job == nil {
		return fmt.Errorf("cron job is nil")
	}
	name := strings.TrimSpace(job.Name())
	if name == "" {
		return fmt.Errorf("cron job name is empty")
	}
	if _, dup := r.names[name]; dup {
		return fmt.Errorf("cron job %q registered twice", name)
	}
	r.names[name] = struct{}{}
	r.jobs = append(r.jobs, job)
	return nil
}

// Jobs returns a copy of the jobs in registration order.
func (r *Registry) Jobs() []Job {
	return append([]Job(nil), r.jobs...)
}
