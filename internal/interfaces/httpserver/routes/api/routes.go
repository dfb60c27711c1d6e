package api

import (
	"github.com/gin-gonic/gin"

	"soundtrack-server/services/upload-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates route registration under the /api prefix.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all API routes.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/api")
	group.POST("/upload", r.handlers.Upload.Upload)
	group.GET("/upload/:id", r.handlers.Upload.Get)
	group.GET("/upload/:id/file", r.handlers.Upload.File)
	group.GET("/uploads", r.handlers.Upload.List)
}
