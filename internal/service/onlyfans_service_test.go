package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	config "creatorhub/configs"
	"creatorhub/internal/models"
	"creatorhub/internal/transfer"
	"creatorhub/pkg/errs"
	"creatorhub/pkg/utils"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

func encryptToken(t *testing.T, token string) string {
	t.Helper()
	encrypted, err := utils.Encrypt([]byte(token), []byte(testSecretKey))
	require.NoError(t, err)
	return encrypted
}

func newTestConnection(t *testing.T, access, refresh string) *models.PlatformConnection {
	t.Helper()
	return &models.PlatformConnection{
		ID:             1,
		CreatorID:      1,
		Platform:       models.PlatformOnlyFans,
		AccessToken:    encryptToken(t, access),
		RefreshToken:   encryptToken(t, refresh),
		TokenExpiresAt: time.Now().Add(time.Hour),
	}
}

func newOnlyFansForTest(t *testing.T, baseURL string) (OnlyFansService, *fakeConnectionRepo) {
	t.Helper()
	cfg := config.Config{
		OnlyFansAPIBase: baseURL,
		SecretKey:       testSecretKey,
	}
	repo := newFakeConnectionRepo()
	return NewOnlyFansService(cfg, repo), repo
}

func TestGetProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/me", r.URL.Path)
		require.Equal(t, "Bearer token-a", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "u1", "username": "creator", "subscribers_count": 42,
		})
	}))
	defer server.Close()

	s, _ := newOnlyFansForTest(t, server.URL)
	conn := newTestConnection(t, "token-a", "refresh-a")

	profile, err := s.GetProfile(context.Background(), conn)
	require.NoError(t, err)
	require.Equal(t, "creator", profile.Username)
	require.Equal(t, 42, profile.Subscribers)
}

func TestUnauthorizedTriggersSingleRefreshAndReplay(t *testing.T) {
	var profileCalls, refreshCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/me":
			profileCalls.Add(1)
			if r.Header.Get("Authorization") != "Bearer token-fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"id": "u1", "username": "creator"})
		case "/oauth/token":
			refreshCalls.Add(1)
			require.NoError(t, r.ParseForm())
			require.Equal(t, "refresh_token", r.FormValue("grant_type"))
			require.Equal(t, "refresh-a", r.FormValue("refresh_token"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "token-fresh", "refresh_token": "refresh-b", "expires_in": 3600,
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	s, repo := newOnlyFansForTest(t, server.URL)
	conn := newTestConnection(t, "token-stale", "refresh-a")

	profile, err := s.GetProfile(context.Background(), conn)
	require.NoError(t, err)
	require.Equal(t, "creator", profile.Username)

	// Original request, then exactly one replay after the refresh.
	require.Equal(t, int32(2), profileCalls.Load())
	require.Equal(t, int32(1), refreshCalls.Load())
	require.Equal(t, 1, repo.setTokens)

	// The connection now carries the rotated tokens.
	access, err := utils.Decrypt(conn.AccessToken, []byte(testSecretKey))
	require.NoError(t, err)
	require.Equal(t, "token-fresh", access)
}

func TestPersistentUnauthorizedFailsAuthentication(t *testing.T) {
	var profileCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/me":
			profileCalls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		case "/oauth/token":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "token-still-bad", "expires_in": 3600,
			})
		}
	}))
	defer server.Close()

	s, _ := newOnlyFansForTest(t, server.URL)
	conn := newTestConnection(t, "token-stale", "refresh-a")

	_, err := s.GetProfile(context.Background(), conn)
	require.ErrorIs(t, err, errs.ErrAuthentication)

	// One replay, never a loop.
	require.Equal(t, int32(2), profileCalls.Load())
}

func TestFailedRefreshFailsAuthentication(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/me":
			w.WriteHeader(http.StatusUnauthorized)
		case "/oauth/token":
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	s, _ := newOnlyFansForTest(t, server.URL)
	conn := newTestConnection(t, "token-stale", "refresh-dead")

	_, err := s.GetProfile(context.Background(), conn)
	require.ErrorIs(t, err, errs.ErrAuthentication)
}

func TestRateLimitedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	s, _ := newOnlyFansForTest(t, server.URL)
	conn := newTestConnection(t, "token-a", "refresh-a")

	_, err := s.GetPosts(context.Background(), conn)
	require.ErrorIs(t, err, errs.ErrRateLimit)
}

func TestMalformedProfileFailsValidation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Valid JSON but missing the required id and username.
		json.NewEncoder(w).Encode(map[string]interface{}{"subscribers_count": 3})
	}))
	defer server.Close()

	s, _ := newOnlyFansForTest(t, server.URL)
	conn := newTestConnection(t, "token-a", "refresh-a")

	_, err := s.GetProfile(context.Background(), conn)
	require.ErrorIs(t, err, errs.ErrSchemaValidation)
}

func TestSendMessageRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chats/messages", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "m1", "from_user_id": "u1", "to_user_id": "u2", "text": "hey",
		})
	}))
	defer server.Close()

	s, _ := newOnlyFansForTest(t, server.URL)
	conn := newTestConnection(t, "token-a", "refresh-a")

	msg, err := s.SendMessage(context.Background(), conn, &transfer.PlatformMessageRequest{ToUserID: "u2", Text: "hey"})
	require.NoError(t, err)
	require.Equal(t, "m1", msg.ID)
}
