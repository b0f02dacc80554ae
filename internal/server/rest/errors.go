package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/gin-gonic/gin"
)

const (
	msgEmailTaken         = "user with this email already exists."
	msgBadCredentials     = "Unable to authenticate with provided credentials"
	msgNotFound           = "Not found."
	msgInternal           = "A server error occurred."
	msgAuthFailed         = "Incorrect authentication credentials."
	fieldNonFieldErrors   = "non_field_errors"
	wwwAuthenticateHeader = "WWW-Authenticate"
)

func unauthorized(c *gin.Context, detail string) {
	c.Header(wwwAuthenticateHeader, common.TokenKeyword)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

func fieldError(c *gin.Context, field, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{field: []string{message}})
}

func (s *HTTPServer) internalError(c *gin.Context, err error) {
	s.logger.Error(c.Request.Context(), "request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err,
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": msgInternal})
}

// writeError maps a service error onto the JSON error shapes of the API.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	var fe *common.FieldError
	switch {
	case errors.As(err, &fe):
		fieldError(c, fe.Field, fe.Message)
	case errors.Is(err, common.ErrorValidation):
		fieldError(c, fieldNonFieldErrors, err.Error())
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		unauthorized(c, msgAuthFailed)
	case errors.Is(err, common.ErrorNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": msgNotFound})
	default:
		s.internalError(c, err)
	}
}
