package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"creatorhub/internal/queue"
	"creatorhub/internal/service"
	"creatorhub/internal/transfer"
)

type ScheduleHandler struct {
	s           service.ScheduleService
	AsynqClient *asynq.Client
}

func NewScheduleHandler(service service.ScheduleService, asynqClient *asynq.Client) *ScheduleHandler {
	return &ScheduleHandler{s: service, AsynqClient: asynqClient}
}

func (h *ScheduleHandler) CreateScheduledPost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var sc transfer.ScheduleCreation
	if err := c.BodyParser(&sc); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	postID, delay, err := h.s.Create(c.Context(), userID, &sc)
	if err != nil {
		return respondError(c, err)
	}

	err = queue.EnqueuePublish(h.AsynqClient, queue.PublishPostPayload{PostID: postID, CreatorID: userID}, delay)
	if err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"error": "Error scheduling post",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"post_id": postID,
	})
}

func (h *ScheduleHandler) ListScheduledPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	status := c.Query("status")

	posts, err := h.s.List(c.Context(), userID, status)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *ScheduleHandler) RemoveScheduledPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if err := h.s.Remove(c.Context(), int64(postID), userID); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
