package pgx

import (
	"context"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/CiZaii/ai-middle-platform/pkg/common"
)

// SetGraphStatus records the file's graph generation state. A non-empty
// errMsg is stored alongside a failed status; any other status clears the
// previous error.
func (s *Store) SetGraphStatus(ctx context.Context, fileID string, status string, errMsg string) error {
	tag, err := s.conn.Exec(ctx,
		`UPDATE kb_file
		 SET kg_status = $2, kg_error = NULLIF($3, ''), kg_updated_at = now()
		 WHERE id = $1`,
		fileID, status, errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to update graph status for %s: %w", fileID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("file %s not found", fileID)
	}
	return nil
}

// GraphStatus returns the file's recorded graph generation state.
func (s *Store) GraphStatus(ctx context.Context, fileID string) (*common.GraphGenerationStatus, error) {
	status := common.GraphGenerationStatus{FileID: fileID}
	err := s.conn.QueryRow(ctx,
		`SELECT kg_status, COALESCE(kg_error, ''), COALESCE(kg_updated_at, updated_at)
		 FROM kb_file
		 WHERE id = $1`,
		fileID,
	).Scan(&status.Status, &status.Error, &status.UpdatedAt)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, fmt.Errorf("file %s not found", fileID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query graph status for %s: %w", fileID, err)
	}
	return &status, nil
}
