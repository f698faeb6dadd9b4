package queue

import (
	"creatorhub/internal/realtime"
	"creatorhub/internal/repository"
	"creatorhub/internal/service"
)

type Queue struct {
	j   repository.JobRepository
	pc  repository.PlatformConnectionRepository
	sub repository.SubscriberRepository
	sp  repository.ScheduledPostRepository
	ci  repository.ContentItemRepository
	ps  service.PlatformService
	cs  service.ContentService
	rt  realtime.Publisher
}

func NewQueue(
	j repository.JobRepository,
	pc repository.PlatformConnectionRepository,
	sub repository.SubscriberRepository,
	sp repository.ScheduledPostRepository,
	ci repository.ContentItemRepository,
	ps service.PlatformService,
	cs service.ContentService,
	rt realtime.Publisher) *Queue {
	return &Queue{
		j:   j,
		pc:  pc,
		sub: sub,
		sp:  sp,
		ci:  ci,
		ps:  ps,
		cs:  cs,
		rt:  rt,
	}
}

const (
	TaskTypeSyncJob        = "job:sync"
	TaskTypePublishPost    = "post:publish"
	TaskTypeAnalyzeContent = "content:analyze"
)

type SyncJobPayload struct {
	JobID     int64 `json:"job_id"`
	CreatorID int64 `json:"creator_id"`
}

type PublishPostPayload struct {
	PostID    int64 `json:"post_id"`
	CreatorID int64 `json:"creator_id"`
}

type AnalyzeContentPayload struct {
	ContentID int64 `json:"content_id"`
}
