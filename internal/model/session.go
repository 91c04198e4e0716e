package model

import (
	"time"
)

type Session struct {
	ID        string    `db:"id"` // opaque token carried by the session cookie
	UserID    string    `db:"user_id"`
	Remember  bool      `db:"remember"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
