package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"creatorhub/internal/service"
	"creatorhub/internal/transfer"
)

type PlatformHandler struct {
	s service.PlatformService
	u service.UsageService
}

func NewPlatformHandler(s service.PlatformService, u service.UsageService) *PlatformHandler {
	return &PlatformHandler{s: s, u: u}
}

func (h *PlatformHandler) ConnectPlatform(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var cc transfer.ConnectionCreation
	if err := c.BodyParser(&cc); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	connectionID, err := h.s.Connect(c.Context(), userID, &cc)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"connection_id": connectionID,
	})
}

func (h *PlatformHandler) ListConnections(c *fiber.Ctx) error {
	userID := GetUserID(c)

	connections, err := h.s.List(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(connections)
}

func (h *PlatformHandler) DisconnectPlatform(c *fiber.Ctx) error {
	userID := GetUserID(c)
	connectionID := c.QueryInt("id", 0)

	if err := h.s.Disconnect(c.Context(), int64(connectionID), userID); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PlatformHandler) SendMessage(c *fiber.Ctx) error {
	userID := GetUserID(c)
	platform := c.Params("platform")

	if err := h.u.CheckRateLimit(c.Context(), userID, "message:send"); err != nil {
		return respondError(c, err)
	}

	var req transfer.PlatformMessageRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	msg, err := h.s.SendMessage(c.Context(), userID, platform, &req)
	if err != nil {
		return respondError(c, err)
	}

	h.u.TrackUsage(c.Context(), userID, "message:send")

	return c.Status(fiber.StatusOK).JSON(msg)
}
