package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

type createUserRequest struct {
	Email    *string `json:"email" form:"email" binding:"required,notblank,max=255,email"`
	Password *string `json:"password" form:"password" binding:"required,notblank,min=8"`
	Name     *string `json:"name" form:"name" binding:"omitempty,max=255"`
}

type tokenRequest struct {
	Email    *string `json:"email" form:"email" binding:"required,notblank"`
	Password *string `json:"password" form:"password" binding:"required,notblank"`
}

type updateMeRequest struct {
	Email    *string `json:"email" form:"email" binding:"omitempty,notblank,max=255,email"`
	Password *string `json:"password" form:"password" binding:"omitempty,notblank,min=8"`
	Name     *string `json:"name" form:"name" binding:"omitempty,max=255"`
}

type userPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func userResponse(u *models.User) userPayload {
	return userPayload{Email: u.Email, Name: u.Name}
}

func (s *HTTPServer) createUser(c *gin.Context) {
	var in createUserRequest
	if !bind(c, &in) {
		return
	}

	u, err := s.users.CreateUser(c.Request.Context(), *in.Email, *in.Password, services.UserFields{Name: deref(in.Name)})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			fieldError(c, "email", msgEmailTaken)
			return
		}
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "user_id", u.ID)
	c.JSON(http.StatusCreated, userResponse(u))
}

func (s *HTTPServer) obtainToken(c *gin.Context) {
	var in tokenRequest
	if !bind(c, &in) {
		return
	}

	key, err := s.tokens.ObtainToken(c.Request.Context(), *in.Email, *in.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			fieldError(c, fieldNonFieldErrors, msgBadCredentials)
			return
		}
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": key})
}

func (s *HTTPServer) getMe(c *gin.Context) {
	c.JSON(http.StatusOK, userResponse(currentUser(c)))
}

// updateMe serves PATCH (partial) and PUT, which also demands email and
// password.
func (s *HTTPServer) updateMe(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in updateMeRequest
		if !bind(c, &in) {
			return
		}

		if !partial {
			missing := map[string][]string{}
			if in.Email == nil {
				missing["email"] = []string{"This field is required."}
			}
			if in.Password == nil {
				missing["password"] = []string{"This field is required."}
			}
			if len(missing) > 0 {
				c.AbortWithStatusJSON(http.StatusBadRequest, missing)
				return
			}
		}

		me := currentUser(c)
		u, err := s.users.UpdateProfile(c.Request.Context(), me.ID, services.ProfileUpdate{
			Email:    in.Email,
			Name:     in.Name,
			Password: in.Password,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				fieldError(c, "email", msgEmailTaken)
				return
			}
			s.writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, userResponse(u))
	}
}
