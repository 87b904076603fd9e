package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// snapshot is the persisted shape of a session. ExpiresAt travels as epoch
// milliseconds, matching what the storefront clients already stored.
type snapshot struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Role         string `json:"role"`
	ExpiresAt    int64  `json:"expiresAt"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

func encodeSnapshot(s *Session) (string, error) {
	data, err := json.Marshal(snapshot{
		ID:           s.ID,
		Email:        s.Email,
		Username:     s.Username,
		DisplayName:  s.DisplayName,
		FirstName:    s.FirstName,
		LastName:     s.LastName,
		Role:         string(s.Role),
		ExpiresAt:    s.ExpiresAt.UnixMilli(),
		RefreshToken: s.RefreshToken,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	return string(data), nil
}

// decodeSnapshot validates the persisted blob before trusting it. A blob
// that fails the schema check is an error; callers discard it and treat the
// client as signed out.
func decodeSnapshot(raw string) (*Session, error) {
	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if snap.ID == "" {
		return nil, fmt.Errorf("session snapshot missing id")
	}
	role := Role(snap.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("session snapshot has unknown role %q", snap.Role)
	}
	if snap.ExpiresAt <= 0 {
		return nil, fmt.Errorf("session snapshot missing expiry")
	}

	return &Session{
		ID:           snap.ID,
		Email:        snap.Email,
		Username:     snap.Username,
		DisplayName:  snap.DisplayName,
		FirstName:    snap.FirstName,
		LastName:     snap.LastName,
		Role:         role,
		ExpiresAt:    time.UnixMilli(snap.ExpiresAt),
		RefreshToken: snap.RefreshToken,
	}, nil
}
