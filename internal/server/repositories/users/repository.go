// Package users declares and implements persistence of accounts.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

// Repository defines account storage. Lookups by email are
// case-insensitive; a clashing email yields common.ErrorAlreadyExists and
// a missing row yields common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetLastLogin(ctx context.Context, id string, at time.Time) error
}
