package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/CiZaii/ai-middle-platform/internal/server/middleware"
)

// DeleteKnowledgeGraphHandler removes the stored graph for a file.
func DeleteKnowledgeGraphHandler(c echo.Context) error {
	fileID := c.Param("id")
	if fileID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file id is required"})
	}

	app := c.(*middleware.AppContext).App
	if err := app.Graphs.DeleteDocumentGraph(c.Request().Context(), fileID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}
