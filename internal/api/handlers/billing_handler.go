package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"creatorhub/internal/service"
	"creatorhub/internal/transfer"
)

type BillingHandler struct {
	s service.BillingService
}

func NewBillingHandler(service service.BillingService) *BillingHandler {
	return &BillingHandler{s: service}
}

func (h *BillingHandler) GetSubscription(c *fiber.Ctx) error {
	userID := GetUserID(c)

	sub, err := h.s.SubscriptionInfo(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(sub)
}

func (h *BillingHandler) CreateSubscription(c *fiber.Ctx) error {
	userID := GetUserID(c)
	plan := c.Query("plan", "standard")

	checkoutURL, err := h.s.CreateSubscription(c.Context(), userID, plan)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"checkout_url": checkoutURL,
	})
}

func (h *BillingHandler) CancelSubscription(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if err := h.s.CancelSubscription(c.Context(), userID); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *BillingHandler) ListInvoices(c *fiber.Ctx) error {
	userID := GetUserID(c)

	invoices, err := h.s.ListInvoices(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(invoices)
}

func (h *BillingHandler) ListPaymentMethods(c *fiber.Ctx) error {
	userID := GetUserID(c)

	methods, err := h.s.ListPaymentMethods(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(methods)
}

func (h *BillingHandler) SetDefaultPaymentMethod(c *fiber.Ctx) error {
	userID := GetUserID(c)
	methodID := c.Query("id")

	if err := h.s.SetDefaultPaymentMethod(c.Context(), userID, methodID); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *BillingHandler) RemovePaymentMethod(c *fiber.Ctx) error {
	userID := GetUserID(c)
	methodID := c.Query("id")

	if err := h.s.RemovePaymentMethod(c.Context(), userID, methodID); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// PaymentWebhook is called by the payment processor, not by creators.
func (h *BillingHandler) PaymentWebhook(c *fiber.Ctx) error {

	var requestData transfer.SubscriptionEvent

	if err := c.BodyParser(&requestData); err != nil {
		slog.Info(err.Error())
		return err
	}

	err := h.s.HandleSubscriptionEvent(c.Context(), &requestData)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}

	return c.SendStatus(fiber.StatusOK)
}
