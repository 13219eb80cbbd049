package models

import "time"

// Session maps an opaque bearer token to a user identity. Local sessions
// carry UserID, OAuth sessions carry OpenID.
type Session struct {
	Token     string    `json:"token"`
	UserID    int       `json:"userId,omitempty"`
	OpenID    string    `json:"openId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
