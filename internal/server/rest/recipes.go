package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type itemRequest struct {
	Name *string `json:"name" form:"name" binding:"required,notblank,max=255"`
}

type itemPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func itemResponse(id, name string) itemPayload {
	return itemPayload{ID: id, Name: name}
}

func (s *HTTPServer) listTags(c *gin.Context) {
	me := currentUser(c)

	tags, err := s.recipes.ListTags(c.Request.Context(), me.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]itemPayload, 0, len(tags))
	for _, t := range tags {
		out = append(out, itemResponse(t.ID, t.Name))
	}
	c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) createTag(c *gin.Context) {
	var in itemRequest
	if !bind(c, &in) {
		return
	}
	me := currentUser(c)

	t, err := s.recipes.CreateTag(c.Request.Context(), me.ID, *in.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, itemResponse(t.ID, t.Name))
}

func (s *HTTPServer) listIngredients(c *gin.Context) {
	me := currentUser(c)

	ingredients, err := s.recipes.ListIngredients(c.Request.Context(), me.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]itemPayload, 0, len(ingredients))
	for _, i := range ingredients {
		out = append(out, itemResponse(i.ID, i.Name))
	}
	c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) createIngredient(c *gin.Context) {
	var in itemRequest
	if !bind(c, &in) {
		return
	}
	me := currentUser(c)

	i, err := s.recipes.CreateIngredient(c.Request.Context(), me.ID, *in.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, itemResponse(i.ID, i.Name))
}
