package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeBackend stands in for the user, token and recipe services.
type fakeBackend struct {
	mu          sync.Mutex
	seq         int
	users       map[string]*models.User
	passwords   map[string]string
	tokens      map[string]string
	tags        []*models.Tag
	ingredients []*models.Ingredient
	logins      map[string]int
	err         error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users:     map[string]*models.User{},
		passwords: map[string]string{},
		tokens:    map[string]string{},
		logins:    map[string]int{},
	}
}

func (f *fakeBackend) nextID(prefix string) string {
	f.seq++
	return prefix + strconv.Itoa(f.seq)
}

func (f *fakeBackend) findByEmail(email string) *models.User {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (f *fakeBackend) CreateUser(ctx context.Context, email, password string, extra services.UserFields) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	email = auth.NormalizeEmail(email)
	if email == "" {
		return nil, common.ErrEmailRequired
	}
	if f.findByEmail(email) != nil {
		return nil, common.ErrorAlreadyExists
	}
	u := &models.User{
		ID: f.nextID("user-"), Email: email, Name: extra.Name, IsActive: true,
		IsStaff: extra.IsStaff, IsSuperuser: extra.IsSuperuser, CreatedAt: time.Now(),
	}
	f.users[u.ID] = u
	f.passwords[u.ID] = password
	cp := *u
	return &cp, nil
}

func (f *fakeBackend) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u := f.findByEmail(auth.NormalizeEmail(email))
	if u == nil || f.passwords[u.ID] != password || !u.IsActive {
		return nil, common.ErrorUnauthorized
	}
	cp := *u
	return &cp, nil
}

func (f *fakeBackend) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeBackend) List(ctx context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeBackend) UpdateProfile(ctx context.Context, id string, upd services.ProfileUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if upd.Email != nil {
		if other := f.findByEmail(*upd.Email); other != nil && other.ID != id {
			return nil, common.ErrorAlreadyExists
		}
		u.Email = auth.NormalizeEmail(*upd.Email)
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Password != nil {
		f.passwords[id] = *upd.Password
	}
	cp := *u
	return &cp, nil
}

func (f *fakeBackend) AdminUpdate(ctx context.Context, id string, upd services.AdminUserUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	email := auth.NormalizeEmail(upd.Email)
	if email == "" {
		return nil, common.ErrEmailRequired
	}
	if other := f.findByEmail(email); other != nil && other.ID != id {
		return nil, common.ErrorAlreadyExists
	}
	u.Email, u.Name = email, upd.Name
	u.IsActive, u.IsStaff, u.IsSuperuser = upd.IsActive, upd.IsStaff, upd.IsSuperuser
	cp := *u
	return &cp, nil
}

func (f *fakeBackend) RecordLogin(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	now := time.Now()
	u.LastLogin = &now
	f.logins[id]++
	return nil
}

func (f *fakeBackend) ObtainToken(ctx context.Context, email, password string) (string, error) {
	u, err := f.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, userID := range f.tokens {
		if userID == u.ID {
			return key, nil
		}
	}
	key := "key-" + u.ID
	f.tokens[key] = u.ID
	return key, nil
}

func (f *fakeBackend) UserForToken(ctx context.Context, key string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	userID, ok := f.tokens[key]
	if !ok {
		return nil, common.ErrInvalidToken
	}
	u := f.users[userID]
	if !u.IsActive {
		return nil, common.ErrorUnauthorized
	}
	cp := *u
	return &cp, nil
}

func (f *fakeBackend) ListTags(ctx context.Context, userID string) ([]*models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Tag, 0)
	for _, t := range f.tags {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

func (f *fakeBackend) CreateTag(ctx context.Context, userID, name string) (*models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	t := &models.Tag{ID: f.nextID("tag-"), UserID: userID, Name: strings.TrimSpace(name)}
	f.tags = append(f.tags, t)
	return t, nil
}

func (f *fakeBackend) ListIngredients(ctx context.Context, userID string) ([]*models.Ingredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Ingredient, 0)
	for _, i := range f.ingredients {
		if i.UserID == userID {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name > out[b].Name })
	return out, nil
}

func (f *fakeBackend) CreateIngredient(ctx context.Context, userID, name string) (*models.Ingredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := &models.Ingredient{ID: f.nextID("ing-"), UserID: userID, Name: strings.TrimSpace(name)}
	f.ingredients = append(f.ingredients, i)
	return i, nil
}

// --- helpers ---

func newTestServer(t *testing.T) (*HTTPServer, *fakeBackend) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fb := newFakeBackend()
	s, err := NewHTTPServer("127.0.0.1:0", logging.Nop{}, fb, fb, fb, "secret", time.Hour)
	require.NoError(t, err)
	return s, fb
}

func doJSON(t *testing.T, s *HTTPServer, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.TokenKeyword+" "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func doForm(t *testing.T, s *HTTPServer, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func doGet(t *testing.T, s *HTTPServer, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func newRequest(method, path, authorization string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set(common.AuthorizationHeaderName, authorization)
	}
	return req
}

func serve(s *HTTPServer, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}
