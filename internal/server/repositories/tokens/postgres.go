package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreate relies on the unique user_id column: a conflicting insert
// turns into a no-op update so RETURNING yields the stored row.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, userID string, key string) (*models.Token, error) {
	query :=
		`INSERT INTO auth_tokens (key, user_id)
         VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING key, user_id, created_at
		 `

	token := &models.Token{}
	err := r.db.QueryRowContext(ctx, query, key, userID).Scan(&token.Key, &token.UserID, &token.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return token, nil
}

func (r *PostgresRepository) FindUserID(ctx context.Context, key string) (string, error) {
	query :=
		`SELECT user_id FROM auth_tokens
		 WHERE key = $1
		 `

	var userID string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return userID, nil
}
