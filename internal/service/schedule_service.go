package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"creatorhub/internal/models"
	"creatorhub/internal/repository"
	"creatorhub/internal/transfer"
	"creatorhub/pkg/errs"
)

type ScheduleService interface {
	Create(ctx context.Context, creatorID int64, sc *transfer.ScheduleCreation) (int64, time.Duration, error)
	List(ctx context.Context, creatorID int64, status string) ([]*models.ScheduledPost, error)
	Remove(ctx context.Context, id, creatorID int64) error
	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64) error
}

type scheduleService struct {
	sp repository.ScheduledPostRepository
	ci repository.ContentItemRepository
}

func NewScheduleService(sp repository.ScheduledPostRepository, ci repository.ContentItemRepository) ScheduleService {
	return &scheduleService{sp: sp, ci: ci}
}

// Create stores the post and returns the delay until its publish time.
// Times in the past are rejected before anything is written.
func (s *scheduleService) Create(ctx context.Context, creatorID int64, sc *transfer.ScheduleCreation) (int64, time.Duration, error) {
	if sc == nil {
		err := errors.New("schedule data is nil")
		slog.Info(err.Error())
		return 0, 0, err
	}

	scheduledTime, err := time.Parse(time.RFC3339, sc.ScheduledTime)
	if err != nil {
		err = fmt.Errorf("invalid scheduled time format: %w", err)
		slog.Info(err.Error())
		return 0, 0, errs.SchemaValidation(err.Error())
	}
	if !scheduledTime.After(time.Now()) {
		return 0, 0, errs.SchemaValidation("scheduled time must be in the future")
	}

	exists, err := s.ci.CheckByCreatorID(ctx, sc.ContentID, creatorID)
	if err != nil {
		return 0, 0, errs.Persistence("checking content item", err)
	}
	if !exists {
		return 0, 0, errs.NotFound("content doesn't exist")
	}

	post := models.ScheduledPost{
		CreatorID:     creatorID,
		ContentID:     sc.ContentID,
		ScheduledTime: scheduledTime,
	}
	if sc.Caption != "" {
		post.Caption = &sc.Caption
	}

	id, err := s.sp.Create(ctx, &post)
	if err != nil {
		return 0, 0, errs.Persistence("creating scheduled post", err)
	}

	delay := time.Until(scheduledTime)
	if delay < 0 {
		delay = 0
	}

	return id, delay, nil
}

func (s *scheduleService) List(ctx context.Context, creatorID int64, status string) ([]*models.ScheduledPost, error) {
	posts, err := s.sp.ListByCreatorID(ctx, creatorID, status)
	if err != nil {
		return nil, errs.Persistence("listing scheduled posts", err)
	}
	return posts, nil
}

func (s *scheduleService) Remove(ctx context.Context, id, creatorID int64) error {
	isValid, err := s.sp.CheckByCreatorID(ctx, id, creatorID)
	if err != nil {
		return errs.Persistence("checking scheduled post", err)
	}
	if !isValid {
		return errs.NotFound("scheduled post doesn't exist")
	}

	if err := s.sp.Remove(ctx, id, creatorID); err != nil {
		return errs.Persistence("removing scheduled post", err)
	}
	return nil
}

func (s *scheduleService) MarkPublished(ctx context.Context, id int64) error {
	return s.sp.UpdateStatus(ctx, id, models.PostStatusPublished)
}

func (s *scheduleService) MarkFailed(ctx context.Context, id int64) error {
	return s.sp.UpdateStatus(ctx, id, models.PostStatusFailed)
}
