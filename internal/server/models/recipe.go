// Package models contains the server-side records persisted in PostgreSQL.
package models

import "time"

// Tag labels recipes. Owned by exactly one user and visible only to them.
type Tag struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}

// Ingredient is a named recipe component, owned like Tag.
type Ingredient struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}
