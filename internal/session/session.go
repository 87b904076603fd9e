package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleGuest || r == RoleUser || r == RoleAdmin
}

// Session is the record of an authenticated principal. It is valid only
// while ExpiresAt is strictly in the future; an expired session must be
// treated as absent everywhere.
type Session struct {
	ID           string
	Email        string
	Username     string
	DisplayName  string
	FirstName    string
	LastName     string
	Role         Role
	ExpiresAt    time.Time
	RefreshToken string
}

func (s Session) IsExpired() bool {
	return !s.ExpiresAt.After(time.Now())
}

// HasPermission reports whether the session's role satisfies the required
// one. Admin satisfies every check.
func (s Session) HasPermission(required Role) bool {
	if s.IsExpired() {
		return required == RoleGuest
	}
	if s.Role == RoleAdmin {
		return true
	}
	return s.Role == required
}

// generateToken returns 32 bytes of entropy as a base64url string without
// padding. Used for opaque refresh tokens.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
