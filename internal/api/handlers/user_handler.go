package handlers

import (
	"github.com/gofiber/fiber/v2"

	"creatorhub/internal/service"
)

type UserHandler struct {
	s service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{s: service}
}

func (h *UserHandler) GetUserInfo(c *fiber.Ctx) error {
	userId := GetUserID(c)

	userInfo, err := h.s.GetUserInfo(c.Context(), userId)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(userInfo)
}

func (h *UserHandler) RemoveUser(c *fiber.Ctx) error {
	userId := GetUserID(c)

	if err := h.s.RemoveUser(c.Context(), userId); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
