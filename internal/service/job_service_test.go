package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"creatorhub/internal/models"
	"creatorhub/internal/transfer"
	"creatorhub/pkg/errs"
)

func newJobServiceForTest(t *testing.T) (JobService, *fakeJobRepo, *fakeConnectionRepo) {
	t.Helper()
	jobRepo := newFakeJobRepo()
	connRepo := newFakeConnectionRepo()
	return NewJobService(jobRepo, connRepo), jobRepo, connRepo
}

func connectPlatform(t *testing.T, connRepo *fakeConnectionRepo, creatorID int64, platform string) {
	t.Helper()
	_, err := connRepo.Upsert(context.Background(), &models.PlatformConnection{
		CreatorID:      creatorID,
		Platform:       platform,
		TokenExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
}

func TestCreateJobRejectsUnknownType(t *testing.T) {
	s, _, _ := newJobServiceForTest(t)

	_, err := s.Create(context.Background(), 1, "reindex", nil, nil)
	require.ErrorIs(t, err, errs.ErrSchemaValidation)
}

func TestCreateJobDefaultsPayload(t *testing.T) {
	s, repo, _ := newJobServiceForTest(t)

	id, err := s.Create(context.Background(), 1, models.JobTypePost, nil, nil)
	require.NoError(t, err)

	job, err := repo.GetByID(context.Background(), id, 1)
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(job.Payload))
	require.Equal(t, models.JobStatusPending, job.Status)
}

func TestCancelPendingJob(t *testing.T) {
	s, _, _ := newJobServiceForTest(t)

	id, err := s.Create(context.Background(), 1, models.JobTypePost, nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.Cancel(context.Background(), id, 1))

	_, err = s.Info(context.Background(), id, 1)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCancelAdvancedJobIsUnchanged(t *testing.T) {
	s, repo, _ := newJobServiceForTest(t)

	id, err := s.Create(context.Background(), 1, models.JobTypePost, nil, nil)
	require.NoError(t, err)

	claimed, err := repo.MarkProcessing(context.Background(), id)
	require.NoError(t, err)
	require.True(t, claimed)

	err = s.Cancel(context.Background(), id, 1)
	require.ErrorIs(t, err, errs.ErrUnchanged)

	// The job survives the failed cancel.
	job, err := s.Info(context.Background(), id, 1)
	require.NoError(t, err)
	require.Equal(t, models.JobStatusProcessing, job.Status)
}

func TestCancelMissingJob(t *testing.T) {
	s, _, _ := newJobServiceForTest(t)

	err := s.Cancel(context.Background(), 99, 1)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCancelOtherOwnersJob(t *testing.T) {
	s, _, _ := newJobServiceForTest(t)

	id, err := s.Create(context.Background(), 1, models.JobTypePost, nil, nil)
	require.NoError(t, err)

	err = s.Cancel(context.Background(), id, 2)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRetryOnlyFailedJobs(t *testing.T) {
	s, repo, _ := newJobServiceForTest(t)

	id, err := s.Create(context.Background(), 1, models.JobTypePost, nil, nil)
	require.NoError(t, err)

	err = s.Retry(context.Background(), id, 1)
	require.ErrorIs(t, err, errs.ErrUnchanged)

	_, err = repo.MarkProcessing(context.Background(), id)
	require.NoError(t, err)
	_, err = repo.MarkFailed(context.Background(), id, "upstream exploded")
	require.NoError(t, err)

	require.NoError(t, s.Retry(context.Background(), id, 1))

	job, err := s.Info(context.Background(), id, 1)
	require.NoError(t, err)
	require.Equal(t, models.JobStatusPending, job.Status)
	require.Nil(t, job.Error)
}

func TestSyncWithoutConnections(t *testing.T) {
	s, repo, _ := newJobServiceForTest(t)

	_, err := s.SyncContent(context.Background(), 1, &transfer.SyncOptions{})
	require.ErrorIs(t, err, errs.ErrNoConnections)

	// No job row appears on a refused sync.
	jobs, err := repo.ListByOwnerID(context.Background(), 1, "")
	require.NoError(t, err)
	require.Empty(t, jobs)
}

func TestSyncRejectsUnconnectedPlatform(t *testing.T) {
	s, _, connRepo := newJobServiceForTest(t)
	connectPlatform(t, connRepo, 1, models.PlatformOnlyFans)

	_, err := s.SyncContent(context.Background(), 1, &transfer.SyncOptions{
		Platforms: []string{models.PlatformFansly},
	})
	require.ErrorIs(t, err, errs.ErrNoConnections)
}

func TestSyncDefaultsToAllConnectedPlatforms(t *testing.T) {
	s, repo, connRepo := newJobServiceForTest(t)
	connectPlatform(t, connRepo, 1, models.PlatformOnlyFans)
	connectPlatform(t, connRepo, 1, models.PlatformFansly)

	id, err := s.SyncContent(context.Background(), 1, &transfer.SyncOptions{})
	require.NoError(t, err)

	job, err := repo.GetByID(context.Background(), id, 1)
	require.NoError(t, err)

	var payload models.SyncJobPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	require.ElementsMatch(t, []string{models.PlatformOnlyFans, models.PlatformFansly}, payload.Platforms)
	require.ElementsMatch(t, []string{models.MediaTypeImage, models.MediaTypeVideo}, payload.ContentTypes)
}

func TestSyncReturnsExistingActiveJob(t *testing.T) {
	s, repo, connRepo := newJobServiceForTest(t)
	connectPlatform(t, connRepo, 1, models.PlatformOnlyFans)

	first, err := s.SyncContent(context.Background(), 1, &transfer.SyncOptions{})
	require.NoError(t, err)

	second, err := s.SyncContent(context.Background(), 1, &transfer.SyncOptions{})
	require.NoError(t, err)
	require.Equal(t, first, second)

	jobs, err := repo.ListByOwnerID(context.Background(), 1, "")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
}

func TestSyncAfterTerminalJobCreatesNew(t *testing.T) {
	s, repo, connRepo := newJobServiceForTest(t)
	connectPlatform(t, connRepo, 1, models.PlatformOnlyFans)

	first, err := s.SyncContent(context.Background(), 1, &transfer.SyncOptions{})
	require.NoError(t, err)

	_, err = repo.MarkProcessing(context.Background(), first)
	require.NoError(t, err)
	_, err = repo.MarkCompleted(context.Background(), first, []byte(`{}`))
	require.NoError(t, err)

	second, err := s.SyncContent(context.Background(), 1, &transfer.SyncOptions{})
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
