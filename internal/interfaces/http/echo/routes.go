package echo

import e "github.com/labstack/echo/v4"

// Handlers groups everything RegisterRoutes mounts. Nil handlers are skipped.
type Handlers struct {
	Import     *ImportHandler
	ImportForm *ImportFormHandler
	ImportRun  *ImportRunHandler
	User       *UserHandler
}

// RegisterRoutes mounts the API and admin form. guards run on every route
// except /healthz.
func RegisterRoutes(server *e.Echo, h Handlers, guards ...e.MiddlewareFunc) {
	server.GET("/healthz", func(c e.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api := server.Group("/api/v1", guards...)
	if h.Import != nil {
		api.POST("/imports/users", h.Import.ImportUsers)
		if h.Import.acceptsSourcePaths() {
			api.POST("/imports/users/source", h.Import.ImportFromSource)
		}
	}
	if h.ImportRun != nil {
		api.GET("/imports/:id", h.ImportRun.GetImportRun)
	}
	if h.User != nil {
		api.GET("/users/:id", h.User.GetUserByID)
		if h.User.acceptsUsernameLookups() {
			api.GET("/users", h.User.FindUsersByUsername)
		}
	}

	if h.ImportForm != nil {
		if server.Renderer == nil {
			server.Renderer = NewTemplateRenderer()
		}
		admin := server.Group("/admin/people", guards...)
		admin.GET("/import", h.ImportForm.Show)
		admin.POST("/import", h.ImportForm.Submit)
	}
}
