// Package poller watches a job until it reaches a terminal status, with a
// hard bound on both interval count and wall-clock lifetime.
package poller

import (
	"context"
	"errors"
	"time"

	"creatorhub/internal/models"
	"creatorhub/internal/service"
)

// ErrPollTimeout is returned when the job is still running after the last
// allowed attempt. The job itself keeps going; only the watch gives up.
var ErrPollTimeout = errors.New("poller: job did not finish within the attempt budget")

type Config struct {
	Interval    time.Duration
	MaxAttempts int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 2 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 30
	}
	return c
}

type Poller struct {
	jobs service.JobService
	cfg  Config
}

func New(jobs service.JobService, cfg Config) *Poller {
	return &Poller{jobs: jobs, cfg: cfg.withDefaults()}
}

// Wait blocks until the job reaches a terminal status, the attempt budget
// runs out, or ctx is cancelled. The first read happens immediately, not
// after one interval.
func (p *Poller) Wait(ctx context.Context, jobID, ownerID int64) (*models.Job, error) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for attempt := 0; attempt < p.cfg.MaxAttempts; attempt++ {
		job, err := p.jobs.Info(ctx, jobID, ownerID)
		if err != nil {
			return nil, err
		}
		if models.JobStatusTerminal(job.Status) {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return nil, ErrPollTimeout
}
