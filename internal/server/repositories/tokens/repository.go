// Package tokens declares the server-side repository contract for API
// tokens and its PostgreSQL and cached implementations.
package tokens

import (
	"context"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

// Repository stores at most one token per user.
type Repository interface {
	// GetOrCreate stores key for userID unless the user already has a token,
	// and returns whichever token is on record afterwards.
	GetOrCreate(ctx context.Context, userID string, key string) (*models.Token, error)

	// FindUserID resolves a token key to its owner. Unknown keys yield
	// common.ErrorNotFound.
	FindUserID(ctx context.Context, key string) (string, error)
}
