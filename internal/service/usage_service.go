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
	"creatorhub/pkg/errs"
)

// UsageService invokes the remote check_rate_limit and track_usage
// functions. The quota algorithm lives upstream and is opaque here: only an
// explicit denial counts, and any transport failure fails open so a metering
// outage slows nobody down.
type UsageService interface {
	CheckRateLimit(ctx context.Context, userID int64, action string) error
	TrackUsage(ctx context.Context, userID int64, action string)
}

type usageService struct {
	cfg        config.Config
	httpClient *http.Client
}

func NewUsageService(cfg config.Config) UsageService {
	return &usageService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *usageService) CheckRateLimit(ctx context.Context, userID int64, action string) error {
	var out struct {
		Allowed bool `json:"allowed"`
	}
	if err := s.call(ctx, "/usage/check", userID, action, &out); err != nil {
		slog.Info(err.Error())
		return nil
	}

	if !out.Allowed {
		return errs.RateLimit("rate limit reached for " + action)
	}
	return nil
}

func (s *usageService) TrackUsage(ctx context.Context, userID int64, action string) {
	if err := s.call(ctx, "/usage/track", userID, action, nil); err != nil {
		slog.Info(err.Error())
	}
}

func (s *usageService) call(ctx context.Context, path string, userID int64, action string, out interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{
		"user_id": userID,
		"action":  action,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.FunctionsURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("usage function returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return err
		}
	}
	return nil
}
