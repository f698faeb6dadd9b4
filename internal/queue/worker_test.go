package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"creatorhub/internal/models"
	"creatorhub/internal/realtime"
	"creatorhub/internal/repository"
	"creatorhub/internal/service"
	"creatorhub/internal/transfer"
)

// The fakes embed the interfaces they stand in for and implement only what
// the sync path touches.

type fakeJobRepo struct {
	repository.JobRepository
	mu        sync.Mutex
	job       *models.Job
	completed bool
	failed    bool
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id, ownerID int64) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.job == nil || r.job.ID != id || r.job.OwnerID != ownerID {
		return nil, nil
	}
	copied := *r.job
	return &copied, nil
}

func (r *fakeJobRepo) MarkProcessing(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.job == nil || r.job.Status != models.JobStatusPending {
		return false, nil
	}
	r.job.Status = models.JobStatusProcessing
	return true, nil
}

func (r *fakeJobRepo) MarkCompleted(ctx context.Context, id int64, result []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.job.Status = models.JobStatusCompleted
	r.job.Result = result
	r.completed = true
	return true, nil
}

func (r *fakeJobRepo) MarkFailed(ctx context.Context, id int64, errMsg string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.job.Status = models.JobStatusFailed
	r.failed = true
	return true, nil
}

type fakeConnectionRepo struct {
	repository.PlatformConnectionRepository
	conn *models.PlatformConnection
}

func (r *fakeConnectionRepo) GetByCreatorAndPlatform(ctx context.Context, creatorID int64, platform string) (*models.PlatformConnection, error) {
	if r.conn != nil && r.conn.CreatorID == creatorID && r.conn.Platform == platform {
		return r.conn, nil
	}
	return nil, nil
}

type fakeSubscriberRepo struct {
	repository.SubscriberRepository
	mu       sync.Mutex
	upserted []models.Subscriber
}

func (r *fakeSubscriberRepo) Upsert(ctx context.Context, sub *models.Subscriber) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserted = append(r.upserted, *sub)
	return int64(len(r.upserted)), nil
}

type fakePlatformService struct {
	service.PlatformService
	client service.PlatformClient
}

func (s *fakePlatformService) ClientFor(platform string) (service.PlatformClient, error) {
	return s.client, nil
}

type fakePlatformClient struct {
	service.PlatformClient
	profile  transfer.PlatformProfile
	messages []transfer.PlatformMessage
	err      error
}

func (c *fakePlatformClient) GetProfile(ctx context.Context, conn *models.PlatformConnection) (*transfer.PlatformProfile, error) {
	if c.err != nil {
		return nil, c.err
	}
	profile := c.profile
	return &profile, nil
}

func (c *fakePlatformClient) GetPosts(ctx context.Context, conn *models.PlatformConnection) ([]transfer.PlatformPost, error) {
	return []transfer.PlatformPost{{ID: "post-1"}}, nil
}

func (c *fakePlatformClient) GetMessages(ctx context.Context, conn *models.PlatformConnection) ([]transfer.PlatformMessage, error) {
	return c.messages, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *fakePublisher) Publish(ctx context.Context, channel realtime.Channel, ownerID int64, event realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func newSyncJob(t *testing.T) *models.Job {
	payload, err := json.Marshal(models.SyncJobPayload{Platforms: []string{models.PlatformOnlyFans}})
	require.NoError(t, err)
	return &models.Job{
		ID:      1,
		OwnerID: 7,
		Type:    models.JobTypeSync,
		Status:  models.JobStatusPending,
		Payload: payload,
	}
}

func TestRunSyncStampsSubscribedAt(t *testing.T) {
	jobs := &fakeJobRepo{job: newSyncJob(t)}
	subs := &fakeSubscriberRepo{}
	conns := &fakeConnectionRepo{conn: &models.PlatformConnection{ID: 3, CreatorID: 7, Platform: models.PlatformOnlyFans}}
	client := &fakePlatformClient{
		profile: transfer.PlatformProfile{ID: "creator-1", Subscribers: 12},
		messages: []transfer.PlatformMessage{
			{ID: "m1", FromUserID: "fan-1", Text: "hey"},
			{ID: "m2", FromUserID: "creator-1", Text: "reply"},
		},
	}
	q := NewQueue(jobs, conns, subs, nil, nil, &fakePlatformService{client: client}, nil, &fakePublisher{})

	before := time.Now()
	require.NoError(t, q.RunSync(context.Background(), 1, 7))

	require.Len(t, subs.upserted, 1)
	got := subs.upserted[0]
	require.Equal(t, "fan-1", got.PlatformUserID)
	require.Equal(t, models.SubscriberStatusActive, got.Status)
	require.False(t, got.SubscribedAt.IsZero())
	require.False(t, got.SubscribedAt.Before(before))
	require.True(t, jobs.completed)
}

func TestRunSyncSkipsMissingJob(t *testing.T) {
	jobs := &fakeJobRepo{}
	subs := &fakeSubscriberRepo{}
	q := NewQueue(jobs, &fakeConnectionRepo{}, subs, nil, nil, &fakePlatformService{}, nil, &fakePublisher{})

	require.NoError(t, q.RunSync(context.Background(), 42, 7))
	require.Empty(t, subs.upserted)
	require.False(t, jobs.completed)
}

func TestRunSyncFailsWhenEveryPlatformErrors(t *testing.T) {
	jobs := &fakeJobRepo{job: newSyncJob(t)}
	conns := &fakeConnectionRepo{conn: &models.PlatformConnection{CreatorID: 7, Platform: models.PlatformOnlyFans}}
	client := &fakePlatformClient{err: errors.New("upstream down")}
	q := NewQueue(jobs, conns, &fakeSubscriberRepo{}, nil, nil, &fakePlatformService{client: client}, nil, &fakePublisher{})

	require.NoError(t, q.RunSync(context.Background(), 1, 7))
	require.True(t, jobs.failed)
	require.False(t, jobs.completed)
}
