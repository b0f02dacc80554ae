package models

import "time"

// User is an account: an email identity with a password hash and the
// flags that gate the admin site.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	LastLogin    *time.Time
	CreatedAt    time.Time
}
