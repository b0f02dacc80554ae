package models

import "time"

// Token is the opaque API credential of an account. There is at most one
// per user.
type Token struct {
	Key       string
	UserID    string
	CreatedAt time.Time
}
