package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/CiZaii/ai-middle-platform/internal/server/middleware"
)

// GetKnowledgeGraphStatusHandler returns the file's graph generation
// state, so callers can poll for completion or the failure message after
// queueing a generation.
func GetKnowledgeGraphStatusHandler(c echo.Context) error {
	fileID := c.Param("id")
	if fileID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file id is required"})
	}

	app := c.(*middleware.AppContext).App
	status, err := app.Statuses.GraphStatus(c.Request().Context(), fileID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, status)
}
