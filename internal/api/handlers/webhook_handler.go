package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"creatorhub/internal/service"
	"creatorhub/internal/transfer"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Signature-SHA256"

type WebhookHandler struct {
	s service.WebhookService
}

func NewWebhookHandler(service service.WebhookService) *WebhookHandler {
	return &WebhookHandler{s: service}
}

func (h *WebhookHandler) CreateWebhook(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var wc transfer.WebhookCreation
	if err := c.BodyParser(&wc); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	created, err := h.s.Create(c.Context(), userID, &wc)
	if err != nil {
		return respondError(c, err)
	}

	// The secret appears in this response and nowhere else.
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *WebhookHandler) ListWebhooks(c *fiber.Ctx) error {
	userID := GetUserID(c)

	webhooks, err := h.s.List(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(webhooks)
}

func (h *WebhookHandler) RemoveWebhook(c *fiber.Ctx) error {
	userID := GetUserID(c)
	webhookID := c.QueryInt("id", 0)

	if err := h.s.Remove(c.Context(), int64(webhookID), userID); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// IngestWebhook receives platform deliveries. It is unauthenticated; the
// HMAC signature over the raw body is the only credential.
func (h *WebhookHandler) IngestWebhook(c *fiber.Ctx) error {
	webhookID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "webhook id is not valid",
		})
	}

	signature := c.Get(SignatureHeader)
	if signature == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "missing signature header",
		})
	}

	if err := h.s.Process(c.Context(), int64(webhookID), c.Body(), signature); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
