package queue

import (
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

func EnqueueSync(asynqClient *asynq.Client, payload SyncJobPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeSyncJob, taskPayload)

	_, err = asynqClient.Enqueue(task)
	if err != nil {
		return err
	}

	log.Printf("Sync task queued: %+v", payload)
	return nil
}

func EnqueuePublish(asynqClient *asynq.Client, payload PublishPostPayload, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishPost, taskPayload)

	_, err = asynqClient.Enqueue(task, asynq.ProcessIn(delay))
	if err != nil {
		return err
	}

	log.Printf("Publish task scheduled: %+v", payload)
	return nil
}

func EnqueueAnalyze(asynqClient *asynq.Client, payload AnalyzeContentPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeAnalyzeContent, taskPayload)

	_, err = asynqClient.Enqueue(task)
	if err != nil {
		return err
	}

	log.Printf("Analyze task queued: %+v", payload)
	return nil
}
