package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/CiZaii/ai-middle-platform/internal/server/middleware"
)

// GetKnowledgeGraphHandler returns the stored graph for a file in viewer
// shape.
func GetKnowledgeGraphHandler(c echo.Context) error {
	fileID := c.Param("id")
	if fileID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file id is required"})
	}

	app := c.(*middleware.AppContext).App
	view, err := app.Graphs.KnowledgeGraph(c.Request().Context(), fileID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, view)
}
