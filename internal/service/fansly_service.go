package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	config "creatorhub/configs"
	"creatorhub/internal/models"
	"creatorhub/internal/transfer"
	"creatorhub/pkg/errs"
	"creatorhub/pkg/utils"
)

// FanslyService is the restricted platform client. Fansly forbids
// programmatic writes, so CreatePost, UploadMedia and SendMessage fail with
// a typed error before any network call. The refusal is a business rule
// enforced here at the client boundary, not an unimplemented stub.
type FanslyService interface {
	PlatformClient
}

type fanslyService struct {
	cfg        config.Config
	signer     RequestSigner
	httpClient *http.Client
	baseURL    string
}

func NewFanslyService(cfg config.Config, signer RequestSigner) FanslyService {
	return &fanslyService{
		cfg:        cfg,
		signer:     signer,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.FanslyAPIBase,
	}
}

func (s *fanslyService) Platform() string {
	return models.PlatformFansly
}

func (s *fanslyService) GetProfile(ctx context.Context, conn *models.PlatformConnection) (*transfer.PlatformProfile, error) {
	var profile transfer.PlatformProfile
	if err := s.get(ctx, conn, "/account/me", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *fanslyService) GetPosts(ctx context.Context, conn *models.PlatformConnection) ([]transfer.PlatformPost, error) {
	var list transfer.PlatformPostList
	if err := s.get(ctx, conn, "/timeline/home", &list); err != nil {
		return nil, err
	}
	return list.Posts, nil
}

func (s *fanslyService) GetMessages(ctx context.Context, conn *models.PlatformConnection) ([]transfer.PlatformMessage, error) {
	var list transfer.PlatformMessageList
	if err := s.get(ctx, conn, "/messaging/groups", &list); err != nil {
		return nil, err
	}
	return list.Messages, nil
}

func (s *fanslyService) CreatePost(ctx context.Context, conn *models.PlatformConnection, req *transfer.PlatformPostRequest) (*transfer.PlatformPost, error) {
	return nil, errs.ManualActionRequired("fansly")
}

func (s *fanslyService) UploadMedia(ctx context.Context, conn *models.PlatformConnection, mediaURL string) (*transfer.PlatformMediaUpload, error) {
	return nil, errs.ManualActionRequired("fansly")
}

func (s *fanslyService) SendMessage(ctx context.Context, conn *models.PlatformConnection, req *transfer.PlatformMessageRequest) (*transfer.PlatformMessage, error) {
	return nil, errs.ManualActionRequired("fansly")
}

func (s *fanslyService) get(ctx context.Context, conn *models.PlatformConnection, path string, out validatable) error {
	accessToken, err := utils.Decrypt(conn.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return errs.Authentication("stored access token is unreadable")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return err
	}
	s.signer.Sign(req, accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// No refresh flow here: fansly sessions are re-established manually.
		return errs.Authentication("platform rejected session token")
	case resp.StatusCode == http.StatusTooManyRequests:
		return errs.RateLimit("platform rate limit hit")
	case resp.StatusCode >= 400:
		return fmt.Errorf("platform returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.Info(err.Error())
		return errs.SchemaValidation("platform response is not valid JSON")
	}

	return out.Validate()
}
