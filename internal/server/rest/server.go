// Package rest exposes the account, token and recipe API over HTTP and
// serves the staff-only admin site.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
)

// shutdownTimeout bounds how long in-flight requests may run after stop.
const shutdownTimeout = 5 * time.Second

type UserManager interface {
	CreateUser(ctx context.Context, email, password string, extra services.UserFields) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateProfile(ctx context.Context, id string, upd services.ProfileUpdate) (*models.User, error)
	AdminUpdate(ctx context.Context, id string, upd services.AdminUserUpdate) (*models.User, error)
	RecordLogin(ctx context.Context, id string) error
}

type TokenManager interface {
	ObtainToken(ctx context.Context, email, password string) (string, error)
	UserForToken(ctx context.Context, key string) (*models.User, error)
}

type RecipeManager interface {
	ListTags(ctx context.Context, userID string) ([]*models.Tag, error)
	CreateTag(ctx context.Context, userID, name string) (*models.Tag, error)
	ListIngredients(ctx context.Context, userID string) ([]*models.Ingredient, error)
	CreateIngredient(ctx context.Context, userID, name string) (*models.Ingredient, error)
}

type HTTPServer struct {
	address    string
	users      UserManager
	tokens     TokenManager
	recipes    RecipeManager
	logger     logging.Logger
	jwtSecret  []byte
	sessionTTL time.Duration
	handler    http.Handler
}

func NewHTTPServer(a string, l logging.Logger, us UserManager, ts TokenManager, rs RecipeManager, secretKey string, sessionTTL time.Duration) (*HTTPServer, error) {
	s := &HTTPServer{
		address:    a,
		logger:     l.With("module", "http_server"),
		users:      us,
		tokens:     ts,
		recipes:    rs,
		jwtSecret:  []byte(secretKey),
		sessionTTL: sessionTTL,
	}

	h, err := s.router()
	if err != nil {
		return nil, err
	}
	s.handler = h

	return s, nil
}

// Handler returns the routed handler, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
