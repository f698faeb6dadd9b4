package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"creatorhub/pkg/errs"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}

// respondError maps service errors onto HTTP statuses. Unrecognized errors
// become a 500 with a generic body so internals never leak to clients.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := err.Error()

	switch {
	case errors.Is(err, errs.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, errs.ErrAuthentication), errors.Is(err, errs.ErrInvalidSignature):
		status = fiber.StatusUnauthorized
	case errors.Is(err, errs.ErrSchemaValidation), errors.Is(err, errs.ErrNoConnections):
		status = fiber.StatusBadRequest
	case errors.Is(err, errs.ErrUnchanged):
		status = fiber.StatusConflict
	case errors.Is(err, errs.ErrManualActionRequired):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrRateLimit):
		status = fiber.StatusTooManyRequests
	case errors.Is(err, errs.ErrPersistence):
		message = "something went wrong"
	default:
		message = "something went wrong"
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
