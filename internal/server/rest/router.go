package rest

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) router() (http.Handler, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.RedirectTrailingSlash = false
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.Recovery(), s.requestLogger())

	user := r.Group("/user")
	{
		handle(user, http.MethodPost, "/create", s.createUser)
		handle(user, http.MethodPost, "/token", s.obtainToken)

		me := user.Group("", s.tokenAuth())
		handle(me, http.MethodGet, "/me", s.getMe)
		handle(me, http.MethodPatch, "/me", s.updateMe(true))
		handle(me, http.MethodPut, "/me", s.updateMe(false))
	}

	recipe := r.Group("/recipe", s.tokenAuth())
	{
		handle(recipe, http.MethodGet, "/tags", s.listTags)
		handle(recipe, http.MethodPost, "/tags", s.createTag)
		handle(recipe, http.MethodGet, "/ingredients", s.listIngredients)
		handle(recipe, http.MethodPost, "/ingredients", s.createIngredient)
	}

	r.GET("/admin", redirectTo(adminUsersPath))
	r.GET("/admin/", redirectTo(adminUsersPath))
	r.GET("/admin/login/", s.adminLoginForm)
	r.POST("/admin/login/", s.adminLogin)
	r.GET("/admin/logout/", s.adminLogout)

	admin := r.Group("/admin/core/user", s.adminSession())
	{
		admin.GET("/", s.adminUserList)
		admin.GET("/add/", s.adminUserAddForm)
		admin.POST("/add/", s.adminUserAdd)
		admin.GET("/:id/change/", s.adminUserChangeForm)
		admin.POST("/:id/change/", s.adminUserChange)
	}

	return r, nil
}

// handle registers h for path with and without a trailing slash.
func handle(g *gin.RouterGroup, method, path string, h gin.HandlerFunc) {
	g.Handle(method, path, h)
	g.Handle(method, path+"/", h)
}

func redirectTo(location string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusFound, location)
	}
}
