package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"creatorhub/internal/queue"
	"creatorhub/internal/service"
	"creatorhub/internal/transfer"
)

type ContentHandler struct {
	s           service.ContentService
	AsynqClient *asynq.Client
}

func NewContentHandler(service service.ContentService, asynqClient *asynq.Client) *ContentHandler {
	return &ContentHandler{s: service, AsynqClient: asynqClient}
}

func (h *ContentHandler) UploadContent(c *fiber.Ctx) error {
	userID := GetUserID(c)

	file, err := c.FormFile("file")
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file selected",
		})
	}

	contentID, err := h.s.Upload(c.Context(), userID, &transfer.ContentCreation{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}, file)
	if err != nil {
		return respondError(c, err)
	}

	// Analysis runs out of band; the upload response never waits on AI.
	if err := queue.EnqueueAnalyze(h.AsynqClient, queue.AnalyzeContentPayload{ContentID: contentID}); err != nil {
		slog.Info(err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"content_id": contentID,
	})
}

func (h *ContentHandler) ListContent(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID := c.QueryInt("id", 0)

	if contentID != 0 {
		item, err := h.s.Info(c.Context(), int64(contentID), userID)
		if err != nil {
			return respondError(c, err)
		}

		return c.Status(fiber.StatusOK).JSON(item)
	}

	items, err := h.s.List(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(items)
}

func (h *ContentHandler) RemoveContent(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID := c.QueryInt("id", 0)

	if err := h.s.Remove(c.Context(), int64(contentID), userID); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
