// Package tags persists recipe tags. Every query is scoped to one owner.
package tags

import (
	"context"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, tag *models.Tag) (*models.Tag, error)
	// ListByUser returns the tags of userID ordered by name, descending.
	ListByUser(ctx context.Context, userID string) ([]*models.Tag, error)
}
