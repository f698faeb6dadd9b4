package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"creatorhub/internal/queue"
	"creatorhub/internal/service"
	"creatorhub/internal/transfer"
)

type JobHandler struct {
	s           service.JobService
	AsynqClient *asynq.Client
}

func NewJobHandler(service service.JobService, asynqClient *asynq.Client) *JobHandler {
	return &JobHandler{s: service, AsynqClient: asynqClient}
}

func (h *JobHandler) CreateJob(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var jc transfer.JobCreation
	if err := c.BodyParser(&jc); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	var scheduledFor *time.Time
	if jc.ScheduledFor != "" {
		t, err := time.Parse(time.RFC3339, jc.ScheduledFor)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "scheduled_for is not a valid timestamp",
			})
		}
		scheduledFor = &t
	}

	jobID, err := h.s.Create(c.Context(), userID, jc.Type, jc.Payload, scheduledFor)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"job_id": jobID,
	})
}

func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	userID := GetUserID(c)
	status := c.Query("status")

	jobs, err := h.s.List(c.Context(), userID, status)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(jobs)
}

func (h *JobHandler) JobInfo(c *fiber.Ctx) error {
	userID := GetUserID(c)
	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job id is not valid",
		})
	}

	job, err := h.s.Info(c.Context(), int64(jobID), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(job)
}

func (h *JobHandler) CancelJob(c *fiber.Ctx) error {
	userID := GetUserID(c)
	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job id is not valid",
		})
	}

	if err := h.s.Cancel(c.Context(), int64(jobID), userID); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *JobHandler) RetryJob(c *fiber.Ctx) error {
	userID := GetUserID(c)
	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job id is not valid",
		})
	}

	if err := h.s.Retry(c.Context(), int64(jobID), userID); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *JobHandler) SyncContent(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var opts transfer.SyncOptions
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&opts); err != nil {
			slog.Info(err.Error())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to parse request body",
			})
		}
	}

	jobID, err := h.s.SyncContent(c.Context(), userID, &opts)
	if err != nil {
		return respondError(c, err)
	}

	err = queue.EnqueueSync(h.AsynqClient, queue.SyncJobPayload{JobID: jobID, CreatorID: userID})
	if err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"error": "Error queueing sync job",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id": jobID,
	})
}
