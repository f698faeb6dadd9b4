package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"creatorhub/internal/models"
	"creatorhub/internal/repository"
	"creatorhub/internal/transfer"
	"creatorhub/pkg/errs"
)

type JobService interface {
	Create(ctx context.Context, ownerID int64, jobType string, payload json.RawMessage, scheduledFor *time.Time) (int64, error)
	Info(ctx context.Context, id, ownerID int64) (*models.Job, error)
	List(ctx context.Context, ownerID int64, status string) ([]*models.Job, error)
	Cancel(ctx context.Context, id, ownerID int64) error
	Retry(ctx context.Context, id, ownerID int64) error
	SyncContent(ctx context.Context, creatorID int64, opts *transfer.SyncOptions) (int64, error)
}

type jobService struct {
	j  repository.JobRepository
	pc repository.PlatformConnectionRepository
}

func NewJobService(j repository.JobRepository, pc repository.PlatformConnectionRepository) JobService {
	return &jobService{j: j, pc: pc}
}

func validJobType(jobType string) bool {
	switch jobType {
	case models.JobTypePost, models.JobTypeMessage, models.JobTypeSync:
		return true
	}
	return false
}

func (s *jobService) Create(ctx context.Context, ownerID int64, jobType string, payload json.RawMessage, scheduledFor *time.Time) (int64, error) {
	if !validJobType(jobType) {
		return 0, errs.SchemaValidation("unknown job type " + jobType)
	}
	if payload == nil {
		payload = json.RawMessage(`{}`)
	}

	job := models.Job{
		OwnerID:      ownerID,
		Type:         jobType,
		Payload:      payload,
		ScheduledFor: scheduledFor,
	}

	id, err := s.j.Create(ctx, &job)
	if err != nil {
		return 0, errs.Persistence("creating job", err)
	}

	return id, nil
}

func (s *jobService) Info(ctx context.Context, id, ownerID int64) (*models.Job, error) {
	job, err := s.j.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, errs.Persistence("reading job", err)
	}
	if job == nil {
		return nil, errs.NotFound("job doesn't exist")
	}
	return job, nil
}

func (s *jobService) List(ctx context.Context, ownerID int64, status string) ([]*models.Job, error) {
	jobs, err := s.j.ListByOwnerID(ctx, ownerID, status)
	if err != nil {
		return nil, errs.Persistence("listing jobs", err)
	}
	return jobs, nil
}

// Cancel removes the job only while it is still pending. A job another
// actor already advanced is reported as ErrUnchanged so the caller can tell
// "cancelled" apart from "too late to cancel".
func (s *jobService) Cancel(ctx context.Context, id, ownerID int64) error {
	job, err := s.j.GetByID(ctx, id, ownerID)
	if err != nil {
		return errs.Persistence("reading job", err)
	}
	if job == nil {
		return errs.NotFound("job doesn't exist")
	}
	if job.Status != models.JobStatusPending {
		return errs.Unchanged("job is no longer pending")
	}

	// The delete re-checks status, so a worker racing us wins cleanly.
	removed, err := s.j.CancelIfPending(ctx, id, ownerID)
	if err != nil {
		return errs.Persistence("cancelling job", err)
	}
	if !removed {
		return errs.Unchanged("job is no longer pending")
	}
	return nil
}

func (s *jobService) Retry(ctx context.Context, id, ownerID int64) error {
	job, err := s.j.GetByID(ctx, id, ownerID)
	if err != nil {
		return errs.Persistence("reading job", err)
	}
	if job == nil {
		return errs.NotFound("job doesn't exist")
	}
	if job.Status != models.JobStatusFailed {
		return errs.Unchanged("only failed jobs can be retried")
	}

	reset, err := s.j.RetryIfFailed(ctx, id, ownerID)
	if err != nil {
		return errs.Persistence("retrying job", err)
	}
	if !reset {
		return errs.Unchanged("only failed jobs can be retried")
	}
	return nil
}

// SyncContent records the intent to reconcile content across the creator's
// connected platforms. The actual work happens in the queue worker; this
// only writes the job row. At most one sync job per creator may be active:
// if one is already pending or processing its id is returned instead of
// creating a second.
func (s *jobService) SyncContent(ctx context.Context, creatorID int64, opts *transfer.SyncOptions) (int64, error) {
	connections, err := s.pc.ListByCreatorID(ctx, creatorID)
	if err != nil {
		return 0, errs.Persistence("listing platform connections", err)
	}
	if len(connections) == 0 {
		return 0, errs.NoConnections("connect a platform before syncing")
	}

	if existingID, active, err := s.j.HasActiveSyncJob(ctx, creatorID); err != nil {
		return 0, errs.Persistence("checking active sync jobs", err)
	} else if active {
		slog.Info("sync already in flight, returning existing job", "creator_id", creatorID, "job_id", existingID)
		return existingID, nil
	}

	platforms := opts.Platforms
	if len(platforms) == 0 {
		for _, conn := range connections {
			platforms = append(platforms, conn.Platform)
		}
	} else {
		connected := make(map[string]bool, len(connections))
		for _, conn := range connections {
			connected[conn.Platform] = true
		}
		for _, p := range platforms {
			if !connected[p] {
				return 0, errs.NoConnections("platform " + p + " is not connected")
			}
		}
	}

	contentTypes := opts.ContentTypes
	if len(contentTypes) == 0 {
		contentTypes = []string{models.MediaTypeImage, models.MediaTypeVideo}
	}

	payload, err := json.Marshal(models.SyncJobPayload{
		Platforms:    platforms,
		ContentTypes: contentTypes,
	})
	if err != nil {
		return 0, err
	}

	return s.Create(ctx, creatorID, models.JobTypeSync, payload, nil)
}
