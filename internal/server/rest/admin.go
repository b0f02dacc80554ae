package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

const (
	adminLoginPath = "/admin/login/"
	adminUsersPath = "/admin/core/user/"

	msgAdminBadLogin     = "Please enter the correct email address and password for a staff account. Note that both fields may be case-sensitive."
	msgPasswordsDiffer   = "The two password fields didn't match."
	msgRequired          = "This field is required."
	msgInvalidEmail      = "Enter a valid email address."
	msgAdminEmailTaken   = "User with this Email already exists."
	checkboxCheckedValue = "on"
)

type loginPage struct {
	Email string
	Next  string
	Error string
}

type userListPage struct {
	Me    *models.User
	Users []*models.User
}

type userFormPage struct {
	Me     *models.User
	User   *models.User
	Errors map[string]string
}

func adminUserChangePath(id string) string {
	return adminUsersPath + id + "/change/"
}

// safeNext keeps post-login redirects inside the admin site.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/admin/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\") {
		return next
	}
	return adminUsersPath
}

func (s *HTTPServer) adminLoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", loginPage{Next: c.Query("next")})
}

func (s *HTTPServer) adminLogin(c *gin.Context) {
	email := c.PostForm("username")
	password := c.PostForm("password")
	next := c.PostForm("next")

	ctx := c.Request.Context()

	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil && !errors.Is(err, common.ErrorUnauthorized) {
		s.logger.Error(ctx, "admin login failed", "error", err)
		c.HTML(http.StatusInternalServerError, "login.html", loginPage{Email: email, Next: next, Error: msgInternal})
		return
	}
	if err != nil || !canUseAdmin(user) {
		c.HTML(http.StatusOK, "login.html", loginPage{Email: email, Next: next, Error: msgAdminBadLogin})
		return
	}

	if err := s.setSession(c, user.ID); err != nil {
		s.logger.Error(ctx, "admin session error", "error", err)
		c.HTML(http.StatusInternalServerError, "login.html", loginPage{Email: email, Next: next, Error: msgInternal})
		return
	}
	if err := s.users.RecordLogin(ctx, user.ID); err != nil {
		s.logger.Warn(ctx, "recording last login failed", "user_id", user.ID, "error", err)
	}

	s.logger.Info(ctx, "Admin login", "user_id", user.ID)
	c.Redirect(http.StatusFound, safeNext(next))
}

func (s *HTTPServer) adminLogout(c *gin.Context) {
	s.clearSession(c)
	c.Redirect(http.StatusFound, adminLoginPath)
}

func (s *HTTPServer) adminUserList(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		s.adminError(c, err)
		return
	}
	c.HTML(http.StatusOK, "user_list.html", userListPage{Me: currentUser(c), Users: users})
}

func (s *HTTPServer) adminUserChangeForm(c *gin.Context) {
	user, err := s.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.adminError(c, err)
		return
	}
	c.HTML(http.StatusOK, "user_change.html", userFormPage{Me: currentUser(c), User: user})
}

func (s *HTTPServer) adminUserChange(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	upd := services.AdminUserUpdate{
		Email:       strings.TrimSpace(c.PostForm("email")),
		Name:        c.PostForm("name"),
		IsActive:    c.PostForm("is_active") == checkboxCheckedValue,
		IsStaff:     c.PostForm("is_staff") == checkboxCheckedValue,
		IsSuperuser: c.PostForm("is_superuser") == checkboxCheckedValue,
	}

	formErrors := map[string]string{}
	if msg := emailFormError(upd.Email); msg != "" {
		formErrors["email"] = msg
	}
	if utf8.RuneCountInString(upd.Name) > 255 {
		formErrors["name"] = "Ensure this value has at most 255 characters."
	}

	if len(formErrors) == 0 {
		_, err := s.users.AdminUpdate(ctx, id, upd)
		if err == nil {
			c.Redirect(http.StatusFound, adminUsersPath)
			return
		}
		if !collectFormError(err, formErrors) {
			s.adminError(c, err)
			return
		}
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		s.adminError(c, err)
		return
	}
	user.Email = upd.Email
	user.Name = upd.Name
	user.IsActive = upd.IsActive
	user.IsStaff = upd.IsStaff
	user.IsSuperuser = upd.IsSuperuser

	c.HTML(http.StatusOK, "user_change.html", userFormPage{Me: currentUser(c), User: user, Errors: formErrors})
}

func (s *HTTPServer) adminUserAddForm(c *gin.Context) {
	c.HTML(http.StatusOK, "user_add.html", userFormPage{Me: currentUser(c), User: &models.User{}})
}

func (s *HTTPServer) adminUserAdd(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password1 := c.PostForm("password1")
	password2 := c.PostForm("password2")

	formErrors := map[string]string{}
	if msg := emailFormError(email); msg != "" {
		formErrors["email"] = msg
	}
	switch {
	case password1 == "":
		formErrors["password1"] = msgRequired
	case utf8.RuneCountInString(password1) < common.MinPasswordLength:
		formErrors["password1"] = fmt.Sprintf("This password is too short. It must contain at least %d characters.", common.MinPasswordLength)
	}
	if password2 == "" {
		formErrors["password2"] = msgRequired
	} else if password1 != password2 {
		formErrors["password2"] = msgPasswordsDiffer
	}

	if len(formErrors) == 0 {
		u, err := s.users.CreateUser(c.Request.Context(), email, password1, services.UserFields{})
		if err == nil {
			s.logger.Info(c.Request.Context(), "Admin created user", "user_id", u.ID, "by", currentUser(c).ID)
			c.Redirect(http.StatusFound, adminUserChangePath(u.ID))
			return
		}
		if !collectFormError(err, formErrors) {
			s.adminError(c, err)
			return
		}
	}

	c.HTML(http.StatusOK, "user_add.html", userFormPage{Me: currentUser(c), User: &models.User{Email: email}, Errors: formErrors})
}

// collectFormError records err against its form field and reports whether
// it was a user-correctable error.
func collectFormError(err error, formErrors map[string]string) bool {
	var fe *common.FieldError
	switch {
	case errors.As(err, &fe):
		formErrors[fe.Field] = fe.Message
	case errors.Is(err, common.ErrorAlreadyExists):
		formErrors["email"] = msgAdminEmailTaken
	default:
		return false
	}
	return true
}

func (s *HTTPServer) adminError(c *gin.Context, err error) {
	if errors.Is(err, common.ErrorNotFound) {
		c.String(http.StatusNotFound, msgNotFound)
		return
	}
	s.logger.Error(c.Request.Context(), "admin request failed", "path", c.Request.URL.Path, "error", err)
	c.String(http.StatusInternalServerError, msgInternal)
}

func formatLastLogin(t *time.Time) string {
	if t == nil {
		return "None"
	}
	return t.Local().Format("Jan. 2, 2006, 15:04")
}
