package model

import (
	"time"
)

type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	PasswordHash []byte    `db:"password_hash"` // derived key || salt
	CreatedAt    time.Time `db:"created_at"`
}

func (u *User) HasPassword() bool {
	return len(u.PasswordHash) > 0
}
