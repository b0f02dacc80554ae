package tags

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

func (r *PostgresRepository) Create(ctx context.Context, tag *models.Tag) (*models.Tag, error) {

	query :=
		`INSERT INTO tags (id, user_id, name)
		VALUES ($1, $2, $3)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query, tag.ID, tag.UserID, tag.Name).Scan(&tag.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return tag, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Tag, error) {
	query := `SELECT id, user_id, name, created_at FROM tags
		WHERE user_id = $1
		ORDER BY name DESC
		`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Tag, 0)
	for rows.Next() {
		var item models.Tag
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to read tags: %w", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	return result, nil
}
