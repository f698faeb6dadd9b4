package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"creatorhub/internal/models"
	"creatorhub/internal/realtime"
	"creatorhub/internal/repository"
	"creatorhub/internal/transfer"
	"creatorhub/pkg/errs"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type WebhookService interface {
	Create(ctx context.Context, ownerID int64, wc *transfer.WebhookCreation) (*transfer.WebhookCreated, error)
	List(ctx context.Context, ownerID int64) ([]*models.Webhook, error)
	Remove(ctx context.Context, id, ownerID int64) error
	Process(ctx context.Context, webhookID int64, payload []byte, signature string) error
}

type webhookService struct {
	w  repository.WebhookRepository
	rt realtime.Publisher
}

func NewWebhookService(w repository.WebhookRepository, rt realtime.Publisher) WebhookService {
	return &webhookService{w: w, rt: rt}
}

var knownEvents = map[string]realtime.Channel{
	models.EventContentCreated:  realtime.ChannelContent,
	models.EventContentUpdated:  realtime.ChannelContent,
	models.EventContentDeleted:  realtime.ChannelContent,
	models.EventMessageReceived: realtime.ChannelMessages,
	models.EventMessageSent:     realtime.ChannelMessages,
}

func (s *webhookService) Create(ctx context.Context, ownerID int64, wc *transfer.WebhookCreation) (*transfer.WebhookCreated, error) {
	if wc == nil || !strings.HasPrefix(wc.URL, "http") {
		return nil, errors.New("webhook url is not valid")
	}
	if len(wc.Events) == 0 {
		return nil, errors.New("subscribe to at least one event")
	}
	for _, event := range wc.Events {
		if _, ok := knownEvents[event]; !ok {
			return nil, errors.New("unknown event " + event)
		}
	}

	// The secret is generated exactly once and returned only here.
	secret, err := gonanoid.New(32)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	webhook := models.Webhook{
		OwnerID: ownerID,
		URL:     wc.URL,
		Events:  wc.Events,
		Secret:  secret,
	}

	id, err := s.w.Create(ctx, &webhook)
	if err != nil {
		return nil, errs.Persistence("creating webhook", err)
	}

	return &transfer.WebhookCreated{ID: id, URL: wc.URL, Secret: secret}, nil
}

func (s *webhookService) List(ctx context.Context, ownerID int64) ([]*models.Webhook, error) {
	webhooks, err := s.w.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, errs.Persistence("listing webhooks", err)
	}
	return webhooks, nil
}

func (s *webhookService) Remove(ctx context.Context, id, ownerID int64) error {
	if err := s.w.Remove(ctx, id, ownerID); err != nil {
		return errs.Persistence("removing webhook", err)
	}
	return nil
}

// Process verifies one inbound delivery and dispatches it. The HMAC is
// recomputed over the raw body and compared in constant time. After a
// valid signature last_triggered_at is always stamped, whether or not a
// handler exists for the event type.
func (s *webhookService) Process(ctx context.Context, webhookID int64, payload []byte, signature string) error {
	webhook, err := s.w.GetByID(ctx, webhookID)
	if err != nil {
		return errs.Persistence("reading webhook", err)
	}
	if webhook == nil {
		return errs.NotFound("webhook doesn't exist")
	}

	if !VerifySignature(payload, signature, webhook.Secret) {
		return errs.InvalidSignature("signature mismatch")
	}

	if err := s.w.TouchLastTriggered(ctx, webhookID); err != nil {
		return errs.Persistence("stamping webhook", err)
	}

	var event transfer.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		slog.Info(err.Error())
		return errs.SchemaValidation("webhook payload is not valid JSON")
	}

	if !webhook.Active || !subscribed(webhook.Events, event.Type) {
		return nil
	}

	channel, ok := knownEvents[event.Type]
	if !ok {
		// Valid signature, no handler. Already stamped, nothing to do.
		return nil
	}

	if err := s.rt.Publish(ctx, channel, webhook.OwnerID, realtime.Event{Type: event.Type, Data: event.Data}); err != nil {
		slog.Info(err.Error())
	}
	return nil
}

// VerifySignature checks a hex-encoded HMAC-SHA256 of body against secret.
func VerifySignature(body []byte, signature, secret string) bool {
	supplied, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return hmac.Equal(mac.Sum(nil), supplied)
}

// SignPayload is the counterpart used when delivering outbound events.
func SignPayload(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func subscribed(events []string, eventType string) bool {
	for _, e := range events {
		if e == eventType {
			return true
		}
	}
	return false
}
