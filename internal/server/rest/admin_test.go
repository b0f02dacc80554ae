package rest

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, rec interface{ Result() *http.Response }) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == adminSessionCookie {
			return c
		}
	}
	t.Fatal("no admin session cookie")
	return nil
}

// loginAdmin creates a superuser and a regular user the way the admin tests
// of the site expect, and logs the superuser in.
func loginAdmin(t *testing.T, s *HTTPServer, fb *fakeBackend) (*http.Cookie, *models.User) {
	t.Helper()
	_, err := fb.CreateUser(context.Background(), "admin@drawnet.pl", "password123", services.UserFields{IsStaff: true, IsSuperuser: true})
	require.NoError(t, err)
	u, err := fb.CreateUser(context.Background(), "test@drawnet.pl", "password123", services.UserFields{Name: "Test user full name"})
	require.NoError(t, err)

	rec := doForm(t, s, adminLoginPath, url.Values{"username": {"admin@drawnet.pl"}, "password": {"password123"}})
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	return sessionCookie(t, rec), u
}

func TestAdmin_RedirectsWithoutSession(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doGet(t, s, adminUsersPath)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login/?next="+url.QueryEscape(adminUsersPath), rec.Header().Get("Location"))
}

func TestAdmin_RejectsForgedCookie(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doGet(t, s, adminUsersPath, &http.Cookie{Name: adminSessionCookie, Value: "garbage"})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), adminLoginPath))
}

func TestAdmin_LoginForm(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doGet(t, s, adminLoginPath+"?next=/admin/core/user/add/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="username"`)
	assert.Contains(t, rec.Body.String(), `value="/admin/core/user/add/"`)
}

func TestAdmin_LoginSetsSessionAndLastLogin(t *testing.T) {
	s, fb := newTestServer(t)
	_, err := fb.CreateUser(context.Background(), "admin@drawnet.pl", "password123", services.UserFields{IsStaff: true})
	require.NoError(t, err)

	rec := doForm(t, s, adminLoginPath, url.Values{
		"username": {"admin@drawnet.pl"}, "password": {"password123"}, "next": {"/admin/core/user/add/"},
	})

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/core/user/add/", rec.Header().Get("Location"))
	c := sessionCookie(t, rec)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, 1, fb.logins["user-1"])
}

func TestAdmin_LoginRejectsNonStaffAndBadPassword(t *testing.T) {
	s, fb := newTestServer(t)
	_, err := fb.CreateUser(context.Background(), "plain@drawnet.pl", "password123", services.UserFields{})
	require.NoError(t, err)

	for _, form := range []url.Values{
		{"username": {"plain@drawnet.pl"}, "password": {"password123"}},
		{"username": {"ghost@drawnet.pl"}, "password": {"password123"}},
	} {
		rec := doForm(t, s, adminLoginPath, form)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please enter the correct email address")
		assert.Empty(t, rec.Result().Cookies())
	}
}

func TestAdmin_LoginIgnoresForeignNext(t *testing.T) {
	s, fb := newTestServer(t)
	_, err := fb.CreateUser(context.Background(), "admin@drawnet.pl", "password123", services.UserFields{IsStaff: true})
	require.NoError(t, err)

	rec := doForm(t, s, adminLoginPath, url.Values{
		"username": {"admin@drawnet.pl"}, "password": {"password123"}, "next": {"//evil.example/admin/"},
	})

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, adminUsersPath, rec.Header().Get("Location"))
}

func TestAdmin_UsersListed(t *testing.T) {
	s, fb := newTestServer(t)
	cookie, u := loginAdmin(t, s, fb)

	rec := doGet(t, s, adminUsersPath, cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), u.Name)
	assert.Contains(t, rec.Body.String(), u.Email)
}

func TestAdmin_UserChangePage(t *testing.T) {
	s, fb := newTestServer(t)
	cookie, u := loginAdmin(t, s, fb)

	rec := doGet(t, s, adminUserChangePath(u.ID), cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), u.Email)
	assert.Contains(t, rec.Body.String(), "Last login: None")

	rec = doGet(t, s, adminUserChangePath("missing"), cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_UserChangeSubmit(t *testing.T) {
	s, fb := newTestServer(t)
	cookie, u := loginAdmin(t, s, fb)

	rec := doForm(t, s, adminUserChangePath(u.ID), url.Values{
		"email": {"changed@DRAWNET.PL"}, "name": {"Changed"}, "is_active": {"on"}, "is_staff": {"on"},
	}, cookie)

	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	got := fb.users[u.ID]
	assert.Equal(t, "changed@drawnet.pl", got.Email)
	assert.Equal(t, "Changed", got.Name)
	assert.True(t, got.IsStaff)
	assert.False(t, got.IsSuperuser)

	rec = doForm(t, s, adminUserChangePath(u.ID), url.Values{"email": {"admin@drawnet.pl"}, "is_active": {"on"}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgAdminEmailTaken)
}

func TestAdmin_UserChangeRejectsBadEmail(t *testing.T) {
	s, fb := newTestServer(t)
	cookie, u := loginAdmin(t, s, fb)

	for email, want := range map[string]string{
		"foo":       msgInvalidEmail,
		longEmail(): "Ensure this value has at most 255 characters.",
		"  ":        msgRequired,
	} {
		rec := doForm(t, s, adminUserChangePath(u.ID), url.Values{"email": {email}, "is_active": {"on"}, "is_staff": {"on"}}, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), want)
	}
	assert.Equal(t, u.Email, fb.users[u.ID].Email)
}

func TestAdmin_CreateUserPage(t *testing.T) {
	s, fb := newTestServer(t)
	cookie, _ := loginAdmin(t, s, fb)

	rec := doGet(t, s, "/admin/core/user/add/", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password2"`)
}

func TestAdmin_CreateUserSubmit(t *testing.T) {
	s, fb := newTestServer(t)
	cookie, _ := loginAdmin(t, s, fb)

	rec := doForm(t, s, "/admin/core/user/add/", url.Values{
		"email": {"new@drawnet.pl"}, "password1": {"password123"}, "password2": {"password123"},
	}, cookie)

	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	loc := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(loc, adminUsersPath))
	assert.True(t, strings.HasSuffix(loc, "/change/"))
	assert.Len(t, fb.users, 3)
}

func TestAdmin_CreateUserFormErrors(t *testing.T) {
	s, fb := newTestServer(t)
	cookie, _ := loginAdmin(t, s, fb)

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"mismatch", url.Values{"email": {"x@drawnet.pl"}, "password1": {"password123"}, "password2": {"password321"}}, "The two password fields"},
		{"short", url.Values{"email": {"x@drawnet.pl"}, "password1": {"short"}, "password2": {"short"}}, "This password is too short"},
		{"missing email", url.Values{"password1": {"password123"}, "password2": {"password123"}}, msgRequired},
		{"not an address", url.Values{"email": {"foo"}, "password1": {"password123"}, "password2": {"password123"}}, msgInvalidEmail},
		{"long email", url.Values{"email": {longEmail()}, "password1": {"password123"}, "password2": {"password123"}}, "Ensure this value has at most 255 characters."},
		{"taken", url.Values{"email": {"test@drawnet.pl"}, "password1": {"password123"}, "password2": {"password123"}}, msgAdminEmailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doForm(t, s, "/admin/core/user/add/", tt.form, cookie)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
	assert.Len(t, fb.users, 2)
}

func TestAdmin_SessionRevokedWhenStaffRemoved(t *testing.T) {
	s, fb := newTestServer(t)
	cookie, _ := loginAdmin(t, s, fb)
	fb.users["user-1"].IsStaff = false

	rec := doGet(t, s, adminUsersPath, cookie)

	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestAdmin_Logout(t *testing.T) {
	s, fb := newTestServer(t)
	cookie, _ := loginAdmin(t, s, fb)

	rec := doGet(t, s, "/admin/logout/", cookie)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, adminLoginPath, rec.Header().Get("Location"))
	cleared := sessionCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.MaxAge < 0)
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                      adminUsersPath,
		"/admin/core/user/add/": "/admin/core/user/add/",
		"https://evil.example/": adminUsersPath,
		"//evil.example/admin/": adminUsersPath,
		"/admin/\\evil":         adminUsersPath,
		"/user/me":              adminUsersPath,
	}
	for in, want := range tests {
		assert.Equal(t, want, safeNext(in), in)
	}
}
