package ingredients

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, ingredient *models.Ingredient) (*models.Ingredient, error) {

	query :=
		`INSERT INTO ingredients (id, user_id, name)
		VALUES ($1, $2, $3)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query, ingredient.ID, ingredient.UserID, ingredient.Name).Scan(&ingredient.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return ingredient, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Ingredient, error) {
	query := `SELECT id, user_id, name, created_at FROM ingredients
		WHERE user_id = $1
		ORDER BY name DESC
		`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select ingredients: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Ingredient, 0)
	for rows.Next() {
		var item models.Ingredient
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to read ingredients: %w", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ingredients: %w", err)
	}

	return result, nil
}
