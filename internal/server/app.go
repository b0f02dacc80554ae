// Package server initializes and runs the recipe API server.
// It opens the database, applies migrations, wires repositories and
// services, and serves HTTP until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/config"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/recipekeeper/internal/server/rest"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	redis         *redis.Client
	repomanager   repomanager.RepositoryManager
	userService   *services.UserService
	tokenService  *services.TokenService
	recipeService *services.RecipeService
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var opts []repomanager.Option
	var rdb *redis.Client
	if c.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		opts = append(opts, repomanager.WithTokenCache(tokens.NewRedisCache(rdb), c.TokenCacheTTL, logger.With("module", "token_cache")))
	}

	rm := repomanager.NewPostgresRepositoryManager(opts...)

	us := services.NewUserService(db, rm, c)
	ts := services.NewTokenService(db, rm, us)
	rs := services.NewRecipeService(db, rm)

	return &App{
		config:        c,
		logger:        logger,
		db:            db,
		redis:         rdb,
		repomanager:   rm,
		userService:   us,
		tokenService:  ts,
		recipeService: rs,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := rest.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger,
		app.userService, app.tokenService, app.recipeService,
		app.config.SecretKey, app.config.AdminSessionValidityDuration)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close error", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err)
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	defer app.close(ctx)

	app.initSignalHandler(cancelFunc)

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		app.logger.Error(ctx, "migration error", "error", err)
		return
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
}
