// Package ingredients persists recipe ingredients. Every query is scoped to one owner.
package ingredients

import (
	"context"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, ingredient *models.Ingredient) (*models.Ingredient, error)
	// ListByUser returns the ingredients of userID ordered by name, descending.
	ListByUser(ctx context.Context, userID string) ([]*models.Ingredient, error)
}
