// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/migrations"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/ingredients"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/tags"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook. When a token cache is configured the
// tokens repository is decorated with it.
type PostgresRepositoryManager struct {
	tokenCache    tokens.Cache
	tokenCacheTTL time.Duration
	logger        logging.Logger
}

// Option configures a PostgresRepositoryManager.
type Option func(*PostgresRepositoryManager)

// WithTokenCache puts cache in front of token lookups.
func WithTokenCache(cache tokens.Cache, ttl time.Duration, logger logging.Logger) Option {
	return func(m *PostgresRepositoryManager) {
		m.tokenCache = cache
		m.tokenCacheTTL = ttl
		if logger != nil {
			m.logger = logger
		}
	}
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Tokens returns a tokens.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Tokens(db dbx.DBTX) tokens.Repository {
	repo := tokens.NewPostgresRepository(db)
	if m.tokenCache == nil {
		return repo
	}
	return tokens.NewCachedRepository(repo, m.tokenCache, m.tokenCacheTTL, m.logger)
}

func (m *PostgresRepositoryManager) Tags(db dbx.DBTX) tags.Repository {
	return tags.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Ingredients(db dbx.DBTX) ingredients.Repository {
	return ingredients.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(opts ...Option) *PostgresRepositoryManager {
	m := &PostgresRepositoryManager{logger: logging.Nop{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
