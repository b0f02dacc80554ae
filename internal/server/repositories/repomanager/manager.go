package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/ingredients"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/tags"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tokens(db dbx.DBTX) tokens.Repository
	Tags(db dbx.DBTX) tags.Repository
	Ingredients(db dbx.DBTX) ingredients.Repository
}
