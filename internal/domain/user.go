package domain

import "time"

// User represents the instance owner's account. Kinship is a single-tenant
// self-hosted app, so the first user created during setup owns everything.
type User struct {
	Entity
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	DisplayName  string    `json:"display_name"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// AuthSession represents a logged-in device. The refresh token is stored
// hashed so a database leak does not yield usable tokens.
type AuthSession struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	DeviceName       string    `json:"device_name,omitempty"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastUsedAt       time.Time `json:"last_used_at"`
}

// IsExpired returns true if the session can no longer be refreshed.
func (s *AuthSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
