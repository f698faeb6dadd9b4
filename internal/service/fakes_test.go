package service

import (
	"context"
	"sync"
	"time"

	"github.com/lib/pq"

	"creatorhub/internal/models"
	"creatorhub/internal/realtime"
)

// In-memory repository fakes shared by the service tests.

type fakeJobRepo struct {
	mu     sync.Mutex
	nextID int64
	jobs   map[int64]*models.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[int64]*models.Job)}
}

func (r *fakeJobRepo) Create(ctx context.Context, job *models.Job) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *job
	stored.ID = r.nextID
	stored.Status = models.JobStatusPending
	stored.CreatedAt = time.Now()
	r.jobs[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id, ownerID int64) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.OwnerID != ownerID {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (r *fakeJobRepo) ListByOwnerID(ctx context.Context, ownerID int64, status string) ([]*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var jobs []*models.Job
	for _, job := range r.jobs {
		if job.OwnerID != ownerID {
			continue
		}
		if status != "" && job.Status != status {
			continue
		}
		copied := *job
		jobs = append(jobs, &copied)
	}
	return jobs, nil
}

func (r *fakeJobRepo) HasActiveSyncJob(ctx context.Context, ownerID int64) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, job := range r.jobs {
		if job.OwnerID == ownerID && job.Type == models.JobTypeSync &&
			(job.Status == models.JobStatusPending || job.Status == models.JobStatusProcessing) {
			return job.ID, true, nil
		}
	}
	return 0, false, nil
}

func (r *fakeJobRepo) CancelIfPending(ctx context.Context, id, ownerID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.OwnerID != ownerID || job.Status != models.JobStatusPending {
		return false, nil
	}
	delete(r.jobs, id)
	return true, nil
}

func (r *fakeJobRepo) RetryIfFailed(ctx context.Context, id, ownerID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.OwnerID != ownerID || job.Status != models.JobStatusFailed {
		return false, nil
	}
	job.Status = models.JobStatusPending
	job.Error = nil
	return true, nil
}

func (r *fakeJobRepo) MarkProcessing(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != models.JobStatusPending {
		return false, nil
	}
	job.Status = models.JobStatusProcessing
	return true, nil
}

func (r *fakeJobRepo) MarkCompleted(ctx context.Context, id int64, result []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != models.JobStatusProcessing {
		return false, nil
	}
	job.Status = models.JobStatusCompleted
	job.Result = result
	return true, nil
}

func (r *fakeJobRepo) MarkFailed(ctx context.Context, id int64, errMsg string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != models.JobStatusProcessing {
		return false, nil
	}
	job.Status = models.JobStatusFailed
	job.Error = &errMsg
	return true, nil
}

type fakeConnectionRepo struct {
	mu          sync.Mutex
	nextID      int64
	connections map[int64]*models.PlatformConnection
	setTokens   int
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{connections: make(map[int64]*models.PlatformConnection)}
}

func (r *fakeConnectionRepo) Upsert(ctx context.Context, pc *models.PlatformConnection) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.connections {
		if existing.CreatorID == pc.CreatorID && existing.Platform == pc.Platform {
			pc.ID = existing.ID
			stored := *pc
			r.connections[existing.ID] = &stored
			return existing.ID, nil
		}
	}
	r.nextID++
	pc.ID = r.nextID
	stored := *pc
	r.connections[pc.ID] = &stored
	return pc.ID, nil
}

func (r *fakeConnectionRepo) GetByID(ctx context.Context, id int64) (*models.PlatformConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pc, ok := r.connections[id]
	if !ok {
		return nil, nil
	}
	copied := *pc
	return &copied, nil
}

func (r *fakeConnectionRepo) GetByCreatorAndPlatform(ctx context.Context, creatorID int64, platform string) (*models.PlatformConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pc := range r.connections {
		if pc.CreatorID == creatorID && pc.Platform == platform {
			copied := *pc
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeConnectionRepo) ListByCreatorID(ctx context.Context, creatorID int64) ([]*models.PlatformConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var connections []*models.PlatformConnection
	for _, pc := range r.connections {
		if pc.CreatorID == creatorID {
			copied := *pc
			connections = append(connections, &copied)
		}
	}
	return connections, nil
}

func (r *fakeConnectionRepo) ListByTokenExpiry(ctx context.Context, before time.Time) ([]*models.PlatformConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var connections []*models.PlatformConnection
	for _, pc := range r.connections {
		if pc.TokenExpiresAt.Before(before) {
			copied := *pc
			connections = append(connections, &copied)
		}
	}
	return connections, nil
}

func (r *fakeConnectionRepo) SetToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setTokens++
	if pc, ok := r.connections[id]; ok {
		pc.AccessToken = accessToken
		if refreshToken != "" {
			pc.RefreshToken = refreshToken
		}
		pc.TokenExpiresAt = expiresAt
	}
	return nil
}

func (r *fakeConnectionRepo) Remove(ctx context.Context, id, creatorID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.connections, id)
	return nil
}

type fakeWebhookRepo struct {
	mu       sync.Mutex
	nextID   int64
	webhooks map[int64]*models.Webhook
	stamped  int
}

func newFakeWebhookRepo() *fakeWebhookRepo {
	return &fakeWebhookRepo{webhooks: make(map[int64]*models.Webhook)}
}

func (r *fakeWebhookRepo) Create(ctx context.Context, wh *models.Webhook) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *wh
	stored.ID = r.nextID
	stored.Active = true
	r.webhooks[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeWebhookRepo) GetByID(ctx context.Context, id int64) (*models.Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wh, ok := r.webhooks[id]
	if !ok {
		return nil, nil
	}
	copied := *wh
	return &copied, nil
}

func (r *fakeWebhookRepo) ListByOwnerID(ctx context.Context, ownerID int64) ([]*models.Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var webhooks []*models.Webhook
	for _, wh := range r.webhooks {
		if wh.OwnerID == ownerID {
			copied := *wh
			webhooks = append(webhooks, &copied)
		}
	}
	return webhooks, nil
}

func (r *fakeWebhookRepo) TouchLastTriggered(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamped++
	if wh, ok := r.webhooks[id]; ok {
		now := time.Now()
		wh.LastTriggeredAt = &now
	}
	return nil
}

func (r *fakeWebhookRepo) SetActive(ctx context.Context, id, ownerID int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if wh, ok := r.webhooks[id]; ok && wh.OwnerID == ownerID {
		wh.Active = active
	}
	return nil
}

func (r *fakeWebhookRepo) Remove(ctx context.Context, id, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.webhooks, id)
	return nil
}

type fakeContentRepo struct {
	mu      sync.Mutex
	nextID  int64
	items   map[int64]*models.ContentItem
	creates int
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{items: make(map[int64]*models.ContentItem)}
}

func (r *fakeContentRepo) Create(ctx context.Context, item *models.ContentItem) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.creates++
	stored := *item
	stored.ID = r.nextID
	r.items[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeContentRepo) GetByID(ctx context.Context, id int64) (*models.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (r *fakeContentRepo) ListByCreatorID(ctx context.Context, creatorID int64) ([]*models.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*models.ContentItem
	for _, item := range r.items {
		if item.CreatorID == creatorID {
			copied := *item
			items = append(items, &copied)
		}
	}
	return items, nil
}

func (r *fakeContentRepo) CheckByCreatorID(ctx context.Context, id, creatorID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	return ok && item.CreatorID == creatorID, nil
}

func (r *fakeContentRepo) UpdateAIFields(ctx context.Context, id int64, caption string, hashtags []string, bestTime time.Time, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[id]; ok {
		item.AICaption = &caption
		item.AIHashtags = pq.StringArray(hashtags)
		item.AIBestTime = &bestTime
		item.AIEngagementScore = score
	}
	return nil
}

func (r *fakeContentRepo) Remove(ctx context.Context, id, creatorID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

type fakeScheduledPostRepo struct {
	mu      sync.Mutex
	nextID  int64
	posts   map[int64]*models.ScheduledPost
	creates int
}

func newFakeScheduledPostRepo() *fakeScheduledPostRepo {
	return &fakeScheduledPostRepo{posts: make(map[int64]*models.ScheduledPost)}
}

func (r *fakeScheduledPostRepo) Create(ctx context.Context, post *models.ScheduledPost) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.creates++
	stored := *post
	stored.ID = r.nextID
	stored.Status = models.PostStatusPending
	r.posts[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeScheduledPostRepo) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (r *fakeScheduledPostRepo) ListByCreatorID(ctx context.Context, creatorID int64, status string) ([]*models.ScheduledPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var posts []*models.ScheduledPost
	for _, post := range r.posts {
		if post.CreatorID != creatorID {
			continue
		}
		if status != "" && post.Status != status {
			continue
		}
		copied := *post
		posts = append(posts, &copied)
	}
	return posts, nil
}

func (r *fakeScheduledPostRepo) CheckByCreatorID(ctx context.Context, id, creatorID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	return ok && post.CreatorID == creatorID, nil
}

func (r *fakeScheduledPostRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post, ok := r.posts[id]; ok {
		post.Status = status
	}
	return nil
}

func (r *fakeScheduledPostRepo) Remove(ctx context.Context, id, creatorID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

// fakePublisher records realtime events instead of hitting Redis.
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
