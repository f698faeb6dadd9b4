package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"creatorhub/internal/models"
	"creatorhub/internal/transfer"
	"creatorhub/pkg/errs"
)

func newScheduleForTest(t *testing.T) (ScheduleService, *fakeScheduledPostRepo, *fakeContentRepo) {
	t.Helper()
	postRepo := newFakeScheduledPostRepo()
	contentRepo := newFakeContentRepo()
	return NewScheduleService(postRepo, contentRepo), postRepo, contentRepo
}

func seedContent(t *testing.T, repo *fakeContentRepo, creatorID int64) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), &models.ContentItem{
		CreatorID: creatorID,
		Title:     "teaser",
		MediaURL:  "https://cdn.example.com/a.jpg",
		MediaType: models.MediaTypeImage,
	})
	require.NoError(t, err)
	return id
}

func TestScheduleCreateReturnsDelay(t *testing.T) {
	s, _, contentRepo := newScheduleForTest(t)
	contentID := seedContent(t, contentRepo, 1)

	scheduledTime := time.Now().Add(2 * time.Hour)
	id, delay, err := s.Create(context.Background(), 1, &transfer.ScheduleCreation{
		ContentID:     contentID,
		ScheduledTime: scheduledTime.Format(time.RFC3339),
		Caption:       "tonight",
	})
	require.NoError(t, err)
	require.NotZero(t, id)
	require.InDelta(t, (2 * time.Hour).Seconds(), delay.Seconds(), 5)
}

func TestScheduleRejectsPastTimeBeforeWrite(t *testing.T) {
	s, postRepo, contentRepo := newScheduleForTest(t)
	contentID := seedContent(t, contentRepo, 1)

	_, _, err := s.Create(context.Background(), 1, &transfer.ScheduleCreation{
		ContentID:     contentID,
		ScheduledTime: time.Now().Add(-time.Minute).Format(time.RFC3339),
	})
	require.ErrorIs(t, err, errs.ErrSchemaValidation)
	require.Zero(t, postRepo.creates)
}

func TestScheduleRejectsBadTimestamp(t *testing.T) {
	s, postRepo, contentRepo := newScheduleForTest(t)
	contentID := seedContent(t, contentRepo, 1)

	_, _, err := s.Create(context.Background(), 1, &transfer.ScheduleCreation{
		ContentID:     contentID,
		ScheduledTime: "tomorrow-ish",
	})
	require.ErrorIs(t, err, errs.ErrSchemaValidation)
	require.Zero(t, postRepo.creates)
}

func TestScheduleRejectsForeignContent(t *testing.T) {
	s, postRepo, contentRepo := newScheduleForTest(t)
	contentID := seedContent(t, contentRepo, 2)

	_, _, err := s.Create(context.Background(), 1, &transfer.ScheduleCreation{
		ContentID:     contentID,
		ScheduledTime: time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Zero(t, postRepo.creates)
}

func TestScheduleStatusTransitions(t *testing.T) {
	s, postRepo, contentRepo := newScheduleForTest(t)
	contentID := seedContent(t, contentRepo, 1)

	id, _, err := s.Create(context.Background(), 1, &transfer.ScheduleCreation{
		ContentID:     contentID,
		ScheduledTime: time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	require.NoError(t, s.MarkPublished(context.Background(), id))

	posts, err := postRepo.ListByCreatorID(context.Background(), 1, models.PostStatusPublished)
	require.NoError(t, err)
	require.Len(t, posts, 1)
}

func TestScheduleRemoveForeignPost(t *testing.T) {
	s, _, contentRepo := newScheduleForTest(t)
	contentID := seedContent(t, contentRepo, 1)

	id, _, err := s.Create(context.Background(), 1, &transfer.ScheduleCreation{
		ContentID:     contentID,
		ScheduledTime: time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	err = s.Remove(context.Background(), id, 99)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
