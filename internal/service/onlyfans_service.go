package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "creatorhub/configs"
	"creatorhub/internal/models"
	"creatorhub/internal/repository"
	"creatorhub/internal/transfer"
	"creatorhub/pkg/errs"
	"creatorhub/pkg/utils"
)

// OnlyFansService is the full-access platform client. Requests carry a
// bearer token; a 401 triggers exactly one refresh-and-replay before the
// error propagates as an authentication failure.
type OnlyFansService interface {
	PlatformClient
	RefreshToken(ctx context.Context, conn *models.PlatformConnection) (string, error)
}

type onlyfansService struct {
	cfg        config.Config
	pc         repository.PlatformConnectionRepository
	httpClient *http.Client
	baseURL    string
}

func NewOnlyFansService(cfg config.Config, pc repository.PlatformConnectionRepository) OnlyFansService {
	return &onlyfansService{
		cfg:        cfg,
		pc:         pc,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.OnlyFansAPIBase,
	}
}

func (s *onlyfansService) Platform() string {
	return models.PlatformOnlyFans
}

func (s *onlyfansService) GetProfile(ctx context.Context, conn *models.PlatformConnection) (*transfer.PlatformProfile, error) {
	var profile transfer.PlatformProfile
	if err := s.doRequest(ctx, conn, http.MethodGet, "/users/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *onlyfansService) GetPosts(ctx context.Context, conn *models.PlatformConnection) ([]transfer.PlatformPost, error) {
	var list transfer.PlatformPostList
	if err := s.doRequest(ctx, conn, http.MethodGet, "/posts", nil, &list); err != nil {
		return nil, err
	}
	return list.Posts, nil
}

func (s *onlyfansService) GetMessages(ctx context.Context, conn *models.PlatformConnection) ([]transfer.PlatformMessage, error) {
	var list transfer.PlatformMessageList
	if err := s.doRequest(ctx, conn, http.MethodGet, "/chats/messages", nil, &list); err != nil {
		return nil, err
	}
	return list.Messages, nil
}

func (s *onlyfansService) CreatePost(ctx context.Context, conn *models.PlatformConnection, req *transfer.PlatformPostRequest) (*transfer.PlatformPost, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var post transfer.PlatformPost
	if err := s.doRequest(ctx, conn, http.MethodPost, "/posts", body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *onlyfansService) UploadMedia(ctx context.Context, conn *models.PlatformConnection, mediaURL string) (*transfer.PlatformMediaUpload, error) {
	body, err := json.Marshal(map[string]string{"source_url": mediaURL})
	if err != nil {
		return nil, err
	}

	var upload transfer.PlatformMediaUpload
	if err := s.doRequest(ctx, conn, http.MethodPost, "/media/upload", body, &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

func (s *onlyfansService) SendMessage(ctx context.Context, conn *models.PlatformConnection, req *transfer.PlatformMessageRequest) (*transfer.PlatformMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var msg transfer.PlatformMessage
	if err := s.doRequest(ctx, conn, http.MethodPost, "/chats/messages", body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

type validatable interface {
	Validate() error
}

// doRequest performs one authenticated call. On a 401 it refreshes the
// access token through the stored refresh token and replays the original
// request once; a second 401 propagates as ErrAuthentication. The body is
// kept as bytes so the replay is byte-identical.
func (s *onlyfansService) doRequest(ctx context.Context, conn *models.PlatformConnection, method, path string, body []byte, out validatable) error {
	accessToken, err := utils.Decrypt(conn.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return errs.Authentication("stored access token is unreadable")
	}

	resp, err := s.send(ctx, method, path, body, accessToken)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()

		accessToken, err = s.RefreshToken(ctx, conn)
		if err != nil {
			return err
		}

		resp, err = s.send(ctx, method, path, body, accessToken)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			return errs.Authentication("platform rejected refreshed token")
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return errs.RateLimit("platform rate limit hit")
	case resp.StatusCode == http.StatusNotFound:
		return errs.NotFound("platform resource not found")
	case resp.StatusCode >= 400:
		return fmt.Errorf("platform returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.Info(err.Error())
		return errs.SchemaValidation("platform response is not valid JSON")
	}

	return out.Validate()
}

func (s *onlyfansService) send(ctx context.Context, method, path string, body []byte, accessToken string) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return resp, nil
}

// RefreshToken exchanges the stored refresh token for a fresh pair and
// rotates both on the connection row. Returns the new plaintext access
// token so the caller can replay immediately.
func (s *onlyfansService) RefreshToken(ctx context.Context, conn *models.PlatformConnection) (string, error) {
	refreshToken, err := utils.Decrypt(conn.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", errs.Authentication("stored refresh token is unreadable")
	}

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/oauth/token", strings.NewReader(data.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", errs.Authentication("token refresh request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errs.Authentication(fmt.Sprintf("token refresh returned status %d", resp.StatusCode))
	}

	var tokenResponse transfer.PlatformTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		slog.Info(err.Error())
		return "", errs.Authentication("token refresh response unreadable")
	}
	if err := tokenResponse.Validate(); err != nil {
		return "", errs.Authentication("token refresh response incomplete")
	}

	encryptedAccess, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}
	encryptedRefresh := ""
	if tokenResponse.RefreshToken != "" {
		encryptedRefresh, err = utils.Encrypt([]byte(tokenResponse.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return "", err
		}
	}

	expiresAt := time.Now().Add(time.Duration(tokenResponse.ExpiresIn) * time.Second)
	if err := s.pc.SetToken(ctx, conn.ID, encryptedAccess, encryptedRefresh, expiresAt); err != nil {
		return "", err
	}

	conn.AccessToken = encryptedAccess
	if encryptedRefresh != "" {
		conn.RefreshToken = encryptedRefresh
	}
	conn.TokenExpiresAt = expiresAt

	return tokenResponse.AccessToken, nil
}
