package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// MaxItemNameLength bounds tag and ingredient names, in characters.
const MaxItemNameLength = 255

// RecipeService manages the tags and ingredients of one owner at a time.
// Every call is scoped by the caller's user id.
type RecipeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewRecipeService(db *sql.DB, m repomanager.RepositoryManager) *RecipeService {
	return &RecipeService{db: db, repomanager: m}
}

// ListTags returns the tags of userID, name descending.
func (s *RecipeService) ListTags(ctx context.Context, userID string) ([]*models.Tag, error) {
	items, err := s.repomanager.Tags(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing tags: %w", err)
	}
	return items, nil
}

// CreateTag stores a tag named name owned by userID.
func (s *RecipeService) CreateTag(ctx context.Context, userID, name string) (*models.Tag, error) {
	name, err := validateItemName(name)
	if err != nil {
		return nil, err
	}

	tag := &models.Tag{ID: uuid.NewString(), UserID: userID, Name: name}
	tag, err = s.repomanager.Tags(s.db).Create(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("error creating tag: %w", err)
	}
	return tag, nil
}

// ListIngredients returns the ingredients of userID, name descending.
func (s *RecipeService) ListIngredients(ctx context.Context, userID string) ([]*models.Ingredient, error) {
	items, err := s.repomanager.Ingredients(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing ingredients: %w", err)
	}
	return items, nil
}

// CreateIngredient stores an ingredient named name owned by userID.
func (s *RecipeService) CreateIngredient(ctx context.Context, userID, name string) (*models.Ingredient, error) {
	name, err := validateItemName(name)
	if err != nil {
		return nil, err
	}

	ingredient := &models.Ingredient{ID: uuid.NewString(), UserID: userID, Name: name}
	ingredient, err = s.repomanager.Ingredients(s.db).Create(ctx, ingredient)
	if err != nil {
		return nil, fmt.Errorf("error creating ingredient: %w", err)
	}
	return ingredient, nil
}

func validateItemName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.NewFieldError("name", "This field may not be blank.")
	}
	if utf8.RuneCountInString(name) > MaxItemNameLength {
		return "", common.NewFieldError("name", fmt.Sprintf("Ensure this field has no more than %d characters.", MaxItemNameLength))
	}
	return name, nil
}
