package server

import (
	"github.com/labstack/echo/v4"

	"github.com/CiZaii/ai-middle-platform/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Knowledge graph routes
	apiRoutes.GET("/files/:id/knowledge-graph", routes.GetKnowledgeGraphHandler)
	apiRoutes.GET("/files/:id/knowledge-graph/status", routes.GetKnowledgeGraphStatusHandler)
	apiRoutes.POST("/files/:id/knowledge-graph", routes.GenerateKnowledgeGraphHandler)
	apiRoutes.DELETE("/files/:id/knowledge-graph", routes.DeleteKnowledgeGraphHandler)
}
