package services

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/config"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/ingredients"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/tags"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{PasswordHashCost: bcrypt.MinCost}
}

// fakeUsersRepo keeps accounts in memory and mimics the case-insensitive
// email index of the real table.
type fakeUsersRepo struct {
	mu    sync.Mutex
	byID  map[string]*models.User
	order []string

	err        error
	lastLogins map[string]time.Time
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}, lastLogins: map[string]time.Time{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, other := range f.byID {
		if strings.EqualFold(other.Email, u.Email) {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	f.order = append(f.order, u.ID)
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.User, 0, len(f.order))
	for _, id := range f.order {
		cp := *f.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[u.ID]; !ok {
		return common.ErrorNotFound
	}
	for id, other := range f.byID {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return common.ErrorAlreadyExists
		}
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsersRepo) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.LastLogin = &at
	f.lastLogins[id] = at
	return nil
}

type fakeTokensRepo struct {
	mu     sync.Mutex
	byUser map[string]string
	err    error
}

func newFakeTokensRepo() *fakeTokensRepo {
	return &fakeTokensRepo{byUser: map[string]string{}}
}

func (f *fakeTokensRepo) GetOrCreate(ctx context.Context, userID, key string) (*models.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if existing, ok := f.byUser[userID]; ok {
		key = existing
	}
	f.byUser[userID] = key
	return &models.Token{Key: key, UserID: userID, CreatedAt: time.Now()}, nil
}

func (f *fakeTokensRepo) FindUserID(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	for userID, k := range f.byUser {
		if k == key {
			return userID, nil
		}
	}
	return "", common.ErrorNotFound
}

type fakeTagsRepo struct {
	items []*models.Tag
	err   error
}

func (f *fakeTagsRepo) Create(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.items = append(f.items, t)
	return t, nil
}

func (f *fakeTagsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Tag, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Tag, 0)
	for _, t := range f.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeIngredientsRepo struct {
	items []*models.Ingredient
	err   error
}

func (f *fakeIngredientsRepo) Create(ctx context.Context, i *models.Ingredient) (*models.Ingredient, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.items = append(f.items, i)
	return i, nil
}

func (f *fakeIngredientsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Ingredient, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Ingredient, 0)
	for _, i := range f.items {
		if i.UserID == userID {
			out = append(out, i)
		}
	}
	return out, nil
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	tk *fakeTokensRepo
	tg *fakeTagsRepo
	in *fakeIngredientsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u:  newFakeUsersRepo(),
		tk: newFakeTokensRepo(),
		tg: &fakeTagsRepo{},
		in: &fakeIngredientsRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository             { return m.u }
func (m *fakeRepoManager) Tokens(db dbx.DBTX) tokens.Repository           { return m.tk }
func (m *fakeRepoManager) Tags(db dbx.DBTX) tags.Repository               { return m.tg }
func (m *fakeRepoManager) Ingredients(db dbx.DBTX) ingredients.Repository { return m.in }
