package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/CiZaii/ai-middle-platform/pkg/common"
	"github.com/CiZaii/ai-middle-platform/pkg/logger"
	"github.com/CiZaii/ai-middle-platform/pkg/store"
)

// GenerateMsg is the kg_queue message body.
type GenerateMsg struct {
	FileID string `json:"file_id"`
}

// GraphGenerator runs one document's graph build. *graph.Generator
// satisfies it.
type GraphGenerator interface {
	Generate(ctx context.Context, fileID string) error
}

// ProcessGenerateMessage runs one graph generation job, tracking the
// file's status around the run: processing while it runs, then completed
// or failed with the error message. Message errors and engine errors both
// surface to the caller, which owns retry and dead-letter routing; status
// write failures are logged but never fail the job.
func ProcessGenerateMessage(ctx context.Context, generator GraphGenerator, statuses store.GenerationStatusStorage, body []byte) error {
	var msg GenerateMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to parse generate message: %w", err)
	}
	if strings.TrimSpace(msg.FileID) == "" {
		return fmt.Errorf("generate message has no file_id")
	}

	setStatus(ctx, statuses, msg.FileID, common.GraphStatusProcessing, "")

	if err := generator.Generate(ctx, msg.FileID); err != nil {
		setStatus(ctx, statuses, msg.FileID, common.GraphStatusFailed, err.Error())
		return err
	}

	setStatus(ctx, statuses, msg.FileID, common.GraphStatusCompleted, "")
	return nil
}

func setStatus(ctx context.Context, statuses store.GenerationStatusStorage, fileID string, status string, errMsg string) {
	if err := statuses.SetGraphStatus(ctx, fileID, status, errMsg); err != nil {
		logger.Error("Failed to update graph status", "file_id", fileID, "status", status, "err", err)
	}
}
