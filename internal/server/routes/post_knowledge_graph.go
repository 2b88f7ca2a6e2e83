package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/CiZaii/ai-middle-platform/internal/queue"
	"github.com/CiZaii/ai-middle-platform/internal/server/middleware"
	"github.com/CiZaii/ai-middle-platform/pkg/common"
	"github.com/CiZaii/ai-middle-platform/pkg/logger"
)

type generateGraphRequest struct {
	FileID string `param:"id" validate:"required"`
}

// GenerateKnowledgeGraphHandler enqueues a graph generation job for a
// file. Generation runs asynchronously in the worker; regenerations are
// serialized through the queue.
func GenerateKnowledgeGraphHandler(c echo.Context) error {
	var req generateGraphRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	// Fail fast on unknown files instead of queueing a doomed job.
	if _, err := app.Documents.GetFile(ctx, req.FileID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	body, err := json.Marshal(queue.GenerateMsg{FileID: req.FileID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if err := queue.PublishFIFO(app.Queue, queue.GenerateQueue, body); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	// The job is queued regardless of whether the status write lands.
	if err := app.Statuses.SetGraphStatus(ctx, req.FileID, common.GraphStatusPending, ""); err != nil {
		logger.Error("Failed to mark file pending", "file_id", req.FileID, "err", err)
	}

	return c.JSON(http.StatusAccepted, map[string]string{"status": "queued", "file_id": req.FileID})
}
