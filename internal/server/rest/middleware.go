package rest

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/gin-gonic/gin"
)

const userKey = "user"

const adminSessionCookie = "admin_session"

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

// tokenAuth resolves "Authorization: Token <key>" to the calling account.
func (s *HTTPServer) tokenAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, problem := tokenFromHeader(c.GetHeader(common.AuthorizationHeaderName))
		if problem != "" {
			unauthorized(c, problem)
			return
		}

		user, err := s.tokens.UserForToken(c.Request.Context(), key)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrInvalidToken):
				unauthorized(c, "Invalid token.")
			case errors.Is(err, common.ErrorUnauthorized):
				unauthorized(c, "User inactive or deleted.")
			default:
				s.internalError(c, err)
			}
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

const (
	msgNoCredentials    = "Authentication credentials were not provided."
	msgBadTokenHeader   = "Invalid token header. No credentials provided."
	msgSpacedTokenValue = "Invalid token header. Token string should not contain spaces."
)

// tokenFromHeader extracts the key from an Authorization header value. A
// non-empty second result describes why no key could be taken.
func tokenFromHeader(h string) (string, string) {
	parts := strings.Fields(h)
	if len(parts) == 0 {
		return "", msgNoCredentials
	}
	if !strings.EqualFold(parts[0], common.TokenKeyword) && !strings.EqualFold(parts[0], common.BearerKeyword) {
		return "", msgNoCredentials
	}
	switch len(parts) {
	case 1:
		return "", msgBadTokenHeader
	case 2:
		return parts[1], ""
	default:
		return "", msgSpacedTokenValue
	}
}

// adminSession admits active staff holding a valid session cookie and sends
// everyone else to the login page.
func (s *HTTPServer) adminSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(adminSessionCookie)
		if err != nil || cookie == "" {
			redirectToLogin(c)
			return
		}

		userID, err := auth.GetUserIDFromToken(cookie, s.jwtSecret)
		if err != nil {
			s.clearSession(c)
			redirectToLogin(c)
			return
		}

		user, err := s.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				s.logger.Error(c.Request.Context(), "admin session lookup failed", "error", err)
			}
			s.clearSession(c)
			redirectToLogin(c)
			return
		}
		if !canUseAdmin(user) {
			s.clearSession(c)
			redirectToLogin(c)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func canUseAdmin(u *models.User) bool {
	return u != nil && u.IsActive && u.IsStaff
}

func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, adminLoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	c.Abort()
}

func (s *HTTPServer) setSession(c *gin.Context, userID string) error {
	token, err := auth.GenerateToken(userID, s.jwtSecret, s.sessionTTL)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(adminSessionCookie, token, int(s.sessionTTL.Seconds()), "/admin", "", c.Request.TLS != nil, true)
	return nil
}

func (s *HTTPServer) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(adminSessionCookie, "", -1, "/admin", "", c.Request.TLS != nil, true)
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
