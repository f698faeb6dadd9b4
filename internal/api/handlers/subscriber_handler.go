package handlers

import (
	"github.com/gofiber/fiber/v2"

	"creatorhub/internal/service"
)

type SubscriberHandler struct {
	s service.SubscriberService
}

func NewSubscriberHandler(service service.SubscriberService) *SubscriberHandler {
	return &SubscriberHandler{s: service}
}

func (h *SubscriberHandler) ListSubscribers(c *fiber.Ctx) error {
	userID := GetUserID(c)
	platform := c.Query("platform")

	subscribers, err := h.s.List(c.Context(), userID, platform)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(subscribers)
}

func (h *SubscriberHandler) SubscriberStats(c *fiber.Ctx) error {
	userID := GetUserID(c)

	stats, err := h.s.Stats(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}
