package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	config "creatorhub/configs"
	"creatorhub/internal/models"
	"creatorhub/internal/transfer"
	"creatorhub/pkg/errs"
)

func newFanslyForTest(t *testing.T, baseURL string) FanslyService {
	t.Helper()
	cfg := config.Config{
		FanslyAPIBase: baseURL,
		SecretKey:     testSecretKey,
	}
	return NewFanslyService(cfg, NewChecksumSigner("device-1"))
}

func newFanslyConnection(t *testing.T) *models.PlatformConnection {
	t.Helper()
	return &models.PlatformConnection{
		ID:          2,
		CreatorID:   1,
		Platform:    models.PlatformFansly,
		AccessToken: encryptToken(t, "session-token"),
	}
}

func TestWritesRefusedWithoutNetworkCall(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	s := newFanslyForTest(t, server.URL)
	conn := newFanslyConnection(t)

	_, err := s.CreatePost(context.Background(), conn, &transfer.PlatformPostRequest{Text: "hello"})
	require.ErrorIs(t, err, errs.ErrManualActionRequired)

	_, err = s.UploadMedia(context.Background(), conn, "https://cdn.example.com/a.jpg")
	require.ErrorIs(t, err, errs.ErrManualActionRequired)

	_, err = s.SendMessage(context.Background(), conn, &transfer.PlatformMessageRequest{ToUserID: "u2", Text: "hi"})
	require.ErrorIs(t, err, errs.ErrManualActionRequired)

	// The refusal happens at the client boundary, before any traffic.
	require.Equal(t, int32(0), requests.Load())
}

func TestReadsAreSigned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "session-token", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("fansly-client-ts"))
		require.Equal(t, "device-1", r.Header.Get("fansly-client-id"))
		require.NotEmpty(t, r.Header.Get("fansly-client-check"))
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "f1", "username": "creator"})
	}))
	defer server.Close()

	s := newFanslyForTest(t, server.URL)
	conn := newFanslyConnection(t)

	profile, err := s.GetProfile(context.Background(), conn)
	require.NoError(t, err)
	require.Equal(t, "f1", profile.ID)
}

func TestUnauthorizedHasNoRefreshFlow(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	s := newFanslyForTest(t, server.URL)
	conn := newFanslyConnection(t)

	_, err := s.GetPosts(context.Background(), conn)
	require.ErrorIs(t, err, errs.ErrAuthentication)
	require.Equal(t, int32(1), requests.Load())
}

func TestNoopSignerSetsOnlyAuthorization(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/account/me", nil)
	NewNoopSigner().Sign(req, "tok")

	require.Equal(t, "tok", req.Header.Get("Authorization"))
	require.Empty(t, req.Header.Get("fansly-client-check"))
}
