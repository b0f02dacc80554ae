package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
)

// tokenKeyBytes is the entropy of an API token; the key is its hex form.
const tokenKeyBytes = 20

var newTokenKey = func() (string, error) {
	return common.MakeRandHexString(tokenKeyBytes)
}

// TokenService issues API tokens and resolves them back to accounts.
type TokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	users       *UserService
}

func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, users *UserService) *TokenService {
	return &TokenService{db: db, repomanager: m, users: users}
}

// ObtainToken verifies the credentials and returns the account's token,
// creating it on first use. Later calls return the same key.
func (s *TokenService) ObtainToken(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}

	key, err := newTokenKey()
	if err != nil {
		return "", fmt.Errorf("%w: generating token: %v", common.ErrorInternal, err)
	}

	token, err := s.repomanager.Tokens(s.db).GetOrCreate(ctx, user.ID, key)
	if err != nil {
		return "", fmt.Errorf("error issuing token: %w", err)
	}
	return token.Key, nil
}

// UserForToken returns the active owner of key. Unknown keys yield
// common.ErrInvalidToken; a disabled owner yields common.ErrorUnauthorized.
func (s *TokenService) UserForToken(ctx context.Context, key string) (*models.User, error) {
	if key == "" {
		return nil, common.ErrInvalidToken
	}

	userID, err := s.repomanager.Tokens(s.db).FindUserID(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error resolving token: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error loading token owner: %w", err)
	}
	if !user.IsActive {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}
