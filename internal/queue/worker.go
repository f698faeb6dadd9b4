package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	"creatorhub/internal/models"
	"creatorhub/internal/realtime"
	"creatorhub/internal/transfer"
	"creatorhub/pkg/errs"
)

// SyncResult is what a finished sync job stores in its result column.
type SyncResult struct {
	Platforms map[string]PlatformSyncResult `json:"platforms"`
}

type PlatformSyncResult struct {
	Posts       int    `json:"posts"`
	Messages    int    `json:"messages"`
	Subscribers int    `json:"subscribers"`
	Error       string `json:"error,omitempty"`
}

func (j *Queue) HandleSyncJobTask(ctx context.Context, task *asynq.Task) error {
	var payload SyncJobPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return j.RunSync(ctx, payload.JobID, payload.CreatorID)
}

// RunSync executes one sync job end to end. A job whose row is gone was
// cancelled before we started; a MarkProcessing miss means another worker
// claimed it. Both are clean no-ops.
func (j *Queue) RunSync(ctx context.Context, jobID, creatorID int64) error {
	job, err := j.j.GetByID(ctx, jobID, creatorID)
	if err != nil {
		return err
	}
	if job == nil {
		log.Printf("Sync job %d no longer exists, skipping", jobID)
		return nil
	}

	claimed, err := j.j.MarkProcessing(ctx, jobID)
	if err != nil {
		return err
	}
	if !claimed {
		log.Printf("Sync job %d already claimed, skipping", jobID)
		return nil
	}

	var spec models.SyncJobPayload
	if err := json.Unmarshal(job.Payload, &spec); err != nil {
		_, _ = j.j.MarkFailed(ctx, jobID, "sync payload is not valid JSON")
		return nil
	}

	result := SyncResult{Platforms: make(map[string]PlatformSyncResult, len(spec.Platforms))}

	var wg sync.WaitGroup
	var mu sync.Mutex
	semaphore := make(chan struct{}, 10)

	for _, platform := range spec.Platforms {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(platform string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			platformResult := j.syncPlatform(ctx, creatorID, platform)

			mu.Lock()
			result.Platforms[platform] = platformResult
			mu.Unlock()
		}(platform)
	}

	wg.Wait()

	failures := 0
	for _, pr := range result.Platforms {
		if pr.Error != "" {
			failures++
		}
	}

	if failures == len(result.Platforms) && failures > 0 {
		_, _ = j.j.MarkFailed(ctx, jobID, "sync failed on every platform")
		j.publishJobEvent(ctx, creatorID, jobID, "job.failed")
		return nil
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if _, err := j.j.MarkCompleted(ctx, jobID, resultBytes); err != nil {
		return err
	}

	j.publishJobEvent(ctx, creatorID, jobID, "job.completed")
	return nil
}

func (j *Queue) syncPlatform(ctx context.Context, creatorID int64, platform string) PlatformSyncResult {
	conn, err := j.pc.GetByCreatorAndPlatform(ctx, creatorID, platform)
	if err != nil {
		return PlatformSyncResult{Error: err.Error()}
	}
	if conn == nil {
		return PlatformSyncResult{Error: "platform not connected"}
	}

	client, err := j.ps.ClientFor(platform)
	if err != nil {
		return PlatformSyncResult{Error: err.Error()}
	}

	var result PlatformSyncResult

	profile, err := client.GetProfile(ctx, conn)
	if err != nil {
		return PlatformSyncResult{Error: err.Error()}
	}
	result.Subscribers = profile.Subscribers

	posts, err := client.GetPosts(ctx, conn)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Posts = len(posts)

	messages, err := client.GetMessages(ctx, conn)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Messages = len(messages)

	// Message senders become subscriber rows; the upsert keeps reruns
	// idempotent.
	for _, msg := range messages {
		if msg.FromUserID == profile.ID {
			continue
		}
		subscriber := models.Subscriber{
			CreatorID:      creatorID,
			Platform:       platform,
			PlatformUserID: msg.FromUserID,
			SubscribedAt:   time.Now(),
			Status:         models.SubscriberStatusActive,
		}
		if _, err := j.sub.Upsert(ctx, &subscriber); err != nil {
			log.Printf("Error saving subscriber %s on %s: %v", msg.FromUserID, platform, err)
		}
	}

	return result
}

func (j *Queue) publishJobEvent(ctx context.Context, creatorID, jobID int64, eventType string) {
	data, err := json.Marshal(map[string]int64{"job_id": jobID})
	if err != nil {
		return
	}
	if err := j.rt.Publish(ctx, realtime.ChannelAnalytics, creatorID, realtime.Event{Type: eventType, Data: data}); err != nil {
		log.Printf("Error publishing job event for job %d: %v", jobID, err)
	}
}

func (j *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return j.PublishPost(ctx, payload.PostID, payload.CreatorID)
}

func (j *Queue) PublishPost(ctx context.Context, postID, creatorID int64) error {
	post, err := j.sp.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil || post.Status != models.PostStatusPending {
		log.Printf("Scheduled post %d no longer pending, skipping", postID)
		return nil
	}

	item, err := j.ci.GetByID(ctx, post.ContentID)
	if err != nil {
		return err
	}
	if item == nil {
		_ = j.sp.UpdateStatus(ctx, postID, models.PostStatusFailed)
		return errors.New("content for scheduled post no longer exists")
	}

	connections, err := j.pc.ListByCreatorID(ctx, creatorID)
	if err != nil {
		return err
	}
	if connections == nil {
		_ = j.sp.UpdateStatus(ctx, postID, models.PostStatusFailed)
		return errors.New("no platforms connected for publishing")
	}

	caption := item.Title
	if post.Caption != nil {
		caption = *post.Caption
	}

	published := 0
	for _, conn := range connections {
		client, err := j.ps.ClientFor(conn.Platform)
		if err != nil {
			log.Printf("Error resolving client for %s: %v", conn.Platform, err)
			continue
		}

		upload, err := client.UploadMedia(ctx, conn, item.MediaURL)
		if err != nil {
			// A restricted platform refuses writes; the post stays manual there.
			if errors.Is(err, errs.ErrManualActionRequired) {
				log.Printf("Platform %s requires manual posting for post %d", conn.Platform, postID)
			} else {
				log.Printf("Error uploading media to %s for post %d: %v", conn.Platform, postID, err)
			}
			continue
		}

		_, err = client.CreatePost(ctx, conn, &transfer.PlatformPostRequest{
			Text:      caption,
			MediaURLs: []string{upload.URL},
		})
		if err != nil {
			log.Printf("Error posting to %s for post %d: %v", conn.Platform, postID, err)
			continue
		}
		published++
	}

	status := models.PostStatusPublished
	if published == 0 {
		status = models.PostStatusFailed
	}
	if err := j.sp.UpdateStatus(ctx, postID, status); err != nil {
		return err
	}

	data, err := json.Marshal(map[string]interface{}{"post_id": postID, "status": status})
	if err != nil {
		return err
	}
	if err := j.rt.Publish(ctx, realtime.ChannelContent, creatorID, realtime.Event{Type: models.EventContentUpdated, Data: data}); err != nil {
		log.Printf("Error publishing post event for post %d: %v", postID, err)
	}

	return nil
}

func (j *Queue) HandleAnalyzeContentTask(ctx context.Context, task *asynq.Task) error {
	var payload AnalyzeContentPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return j.cs.Analyze(ctx, payload.ContentID)
}
