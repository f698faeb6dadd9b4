package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	config "creatorhub/configs"
	"creatorhub/internal/models"
	"creatorhub/internal/repository"
	"creatorhub/internal/transfer"
	"creatorhub/pkg/errs"
)

// BillingService proxies billing reads and writes to the serverless
// functions that talk to the payment processor, and applies processor
// webhooks to the local subscription row. The processor's API key never
// reaches this service.
type BillingService interface {
	SubscriptionInfo(ctx context.Context, userID int64) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, userID int64, plan string) (string, error)
	CancelSubscription(ctx context.Context, userID int64) error
	ListInvoices(ctx context.Context, userID int64) ([]transfer.Invoice, error)
	ListPaymentMethods(ctx context.Context, userID int64) ([]transfer.PaymentMethod, error)
	SetDefaultPaymentMethod(ctx context.Context, userID int64, methodID string) error
	RemovePaymentMethod(ctx context.Context, userID int64, methodID string) error
	HandleSubscriptionEvent(ctx context.Context, payload *transfer.SubscriptionEvent) error
}

type billingService struct {
	cfg        config.Config
	u          repository.UserRepository
	s          repository.SubscriptionRepository
	httpClient *http.Client
}

func NewBillingService(cfg config.Config, u repository.UserRepository, s repository.SubscriptionRepository) BillingService {
	return &billingService{
		cfg:        cfg,
		u:          u,
		s:          s,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *billingService) SubscriptionInfo(ctx context.Context, userID int64) (*models.Subscription, error) {
	sub, err := s.s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, errs.Persistence("reading subscription", err)
	}
	if sub == nil {
		return nil, errs.NotFound("no subscription on file")
	}
	return sub, nil
}

// CreateSubscription asks the billing function for a checkout URL. The
// subscription row itself arrives later through the payment webhook.
func (s *billingService) CreateSubscription(ctx context.Context, userID int64, plan string) (string, error) {
	user, err := s.u.GetByID(ctx, userID)
	if err != nil {
		return "", errs.Persistence("reading user", err)
	}
	if user == nil {
		return "", errs.NotFound("user doesn't exist")
	}

	body := map[string]string{"email": user.Email, "plan": plan}
	var out struct {
		CheckoutURL string `json:"checkout_url"`
	}
	if err := s.callFunction(ctx, http.MethodPost, "/billing/subscribe", body, &out); err != nil {
		return "", err
	}
	return out.CheckoutURL, nil
}

func (s *billingService) CancelSubscription(ctx context.Context, userID int64) error {
	sub, err := s.s.GetByUserID(ctx, userID)
	if err != nil {
		return errs.Persistence("reading subscription", err)
	}
	if sub == nil {
		return errs.NotFound("no subscription on file")
	}

	body := map[string]string{"subscription_id": sub.SubscriptionID}
	if err := s.callFunction(ctx, http.MethodPost, "/billing/cancel", body, nil); err != nil {
		return err
	}

	sub.Status = "cancelled"
	if err := s.s.UpdateSubscription(ctx, sub); err != nil {
		return errs.Persistence("updating subscription", err)
	}
	return nil
}

func (s *billingService) ListInvoices(ctx context.Context, userID int64) ([]transfer.Invoice, error) {
	var out struct {
		Invoices []transfer.Invoice `json:"invoices"`
	}
	path := fmt.Sprintf("/billing/invoices?user_id=%d", userID)
	if err := s.callFunction(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Invoices, nil
}

func (s *billingService) ListPaymentMethods(ctx context.Context, userID int64) ([]transfer.PaymentMethod, error) {
	var out struct {
		PaymentMethods []transfer.PaymentMethod `json:"payment_methods"`
	}
	path := fmt.Sprintf("/billing/payment-methods?user_id=%d", userID)
	if err := s.callFunction(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.PaymentMethods, nil
}

func (s *billingService) SetDefaultPaymentMethod(ctx context.Context, userID int64, methodID string) error {
	body := map[string]interface{}{"user_id": userID, "payment_method_id": methodID}
	return s.callFunction(ctx, http.MethodPost, "/billing/payment-methods/default", body, nil)
}

func (s *billingService) RemovePaymentMethod(ctx context.Context, userID int64, methodID string) error {
	body := map[string]interface{}{"user_id": userID, "payment_method_id": methodID}
	return s.callFunction(ctx, http.MethodPost, "/billing/payment-methods/remove", body, nil)
}

func (s *billingService) callFunction(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.FunctionsURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("billing function returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			slog.Info(err.Error())
			return errs.SchemaValidation("billing response is not valid JSON")
		}
	}
	return nil
}

func (s *billingService) HandleSubscriptionEvent(ctx context.Context, payload *transfer.SubscriptionEvent) error {

	switch payload.EventType {
	case "subscription.paid":
		customerEmail := payload.Object.Customer.Email

		user, isExist, err := s.u.GetByEmail(ctx, customerEmail)
		if err != nil {
			return fmt.Errorf("fetching user by email failed: %w", err)
		}

		var userID int64
		if !isExist {
			newUser := &models.User{
				Email: customerEmail,
			}
			userID, err = s.u.Create(ctx, newUser)
			if err != nil {
				return err
			}

			subscriptionInfo := &models.Subscription{
				UserID:              userID,
				SubscriptionID:      payload.Object.ID,
				SubscriptionEndDate: payload.Object.CurrentPeriodEndDate,
				Status:              payload.Object.Status,
			}

			_, err = s.s.Create(ctx, subscriptionInfo)
			if err != nil {
				return err
			}
		} else {
			userID = user.ID

			subscriptionInfo := &models.Subscription{
				UserID:              userID,
				SubscriptionID:      payload.Object.ID,
				SubscriptionEndDate: payload.Object.CurrentPeriodEndDate,
				Status:              payload.Object.Status,
			}

			err := s.s.UpdateSubscription(ctx, subscriptionInfo)
			if err != nil {
				return err
			}
		}

	case "subscription.cancelled", "subscription.expired":
		user, isExist, err := s.u.GetByEmail(ctx, payload.Object.Customer.Email)
		if err != nil || !isExist {
			return err
		}

		sub, err := s.s.GetByUserID(ctx, user.ID)
		if err != nil || sub == nil {
			return err
		}

		sub.Status = payload.Object.Status
		if err := s.s.UpdateSubscription(ctx, sub); err != nil {
			return err
		}
	}

	return nil
}
