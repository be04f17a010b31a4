package api

import (
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name          string
		xForwardedFor string
		xRealIP       string
		want          string
	}{
		{"forwarded single hop", "203.0.113.5", "", "203.0.113.5"},
		{"forwarded multiple hops", "203.0.113.5,10.0.0.1,10.0.0.2", "", "203.0.113.5"},
		{"real ip fallback", "", "198.51.100.7", "198.51.100.7"},
		{"forwarded wins over real ip", "203.0.113.5", "198.51.100.7", "203.0.113.5"},
		{"neither set", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractIP(tt.xForwardedFor, tt.xRealIP))
		})
	}
}

func TestCheckAuthRateLimit(t *testing.T) {
	s := &Server{
		logger:          slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		authRateLimiter: NewRateLimiter(60, 2),
	}
	defer s.authRateLimiter.Stop()

	assert.True(t, s.checkAuthRateLimit("10.0.0.1"))
	assert.True(t, s.checkAuthRateLimit("10.0.0.1"))
	assert.False(t, s.checkAuthRateLimit("10.0.0.1"))

	// Limits are per address.
	assert.True(t, s.checkAuthRateLimit("10.0.0.2"))

	// Direct local clients carry no proxy headers and are not limited.
	assert.True(t, s.checkAuthRateLimit(""))
}

func TestAuthEndpointRateLimited(t *testing.T) {
	ts := setupTestServer(t)
	ts.createTestUser(t)

	// Swap in a tight limiter so a handful of requests trips it.
	ts.authRateLimiter.Stop()
	ts.authRateLimiter = NewRateLimiter(60, 2)
	defer ts.authRateLimiter.Stop()

	var last int
	for range 4 {
		resp := ts.api.Post("/api/v1/auth/login",
			"X-Forwarded-For: 203.0.113.9",
			map[string]any{
				"email":    "owner@example.com",
				"password": "WrongPassword",
			})
		last = resp.Code
		if last == http.StatusTooManyRequests {
			break
		}
	}

	require.Equal(t, http.StatusTooManyRequests, last)
}
