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
	"creatorhub/pkg/errs"
)

func TestCheckRateLimitAllowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/usage/check", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, float64(1), body["user_id"])
		require.Equal(t, "message:send", body["action"])

		json.NewEncoder(w).Encode(map[string]bool{"allowed": true})
	}))
	defer server.Close()

	s := NewUsageService(config.Config{FunctionsURL: server.URL})
	require.NoError(t, s.CheckRateLimit(context.Background(), 1, "message:send"))
}

func TestCheckRateLimitDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"allowed": false})
	}))
	defer server.Close()

	s := NewUsageService(config.Config{FunctionsURL: server.URL})
	err := s.CheckRateLimit(context.Background(), 1, "message:send")
	require.ErrorIs(t, err, errs.ErrRateLimit)
}

func TestCheckRateLimitFailsOpen(t *testing.T) {
	// Nothing listens here; the metering outage must not block the caller.
	s := NewUsageService(config.Config{FunctionsURL: "http://127.0.0.1:1"})
	require.NoError(t, s.CheckRateLimit(context.Background(), 1, "message:send"))
}

func TestCheckRateLimitUpstreamErrorFailsOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewUsageService(config.Config{FunctionsURL: server.URL})
	require.NoError(t, s.CheckRateLimit(context.Background(), 1, "message:send"))
}

func TestTrackUsagePostsAction(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/usage/track", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
	}))
	defer server.Close()

	s := NewUsageService(config.Config{FunctionsURL: server.URL})
	s.TrackUsage(context.Background(), 1, "message:send")
	require.Equal(t, int32(1), calls.Load())
}
