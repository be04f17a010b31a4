package api

import (
	"github.com/kinshipapp/kinship-server/internal/ratelimit"
)

// RateLimiter wraps KeyedRateLimiter for API use.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a keyed rate limiter.
// ratePerMinute: number of requests allowed per minute per key.
// burst: maximum burst size.
func NewRateLimiter(ratePerMinute int, burst int) *RateLimiter {
	return ratelimit.New(float64(ratePerMinute)/60.0, burst)
}

// checkAuthRateLimit enforces the per-address limit on authentication
// endpoints. Empty addresses (direct local clients) are not limited.
func (s *Server) checkAuthRateLimit(ip string) bool {
	if ip == "" {
		return true
	}
	if !s.authRateLimiter.Allow(ip) {
		s.logger.Warn("Auth rate limit exceeded", "ip", ip)
		return false
	}
	return true
}
