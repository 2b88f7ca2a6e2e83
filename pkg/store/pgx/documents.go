package pgx

import (
	"context"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/CiZaii/ai-middle-platform/pkg/common"
)

// GetFile returns display metadata for a file.
func (s *Store) GetFile(ctx context.Context, fileID string) (*common.DocumentInfo, error) {
	var doc common.DocumentInfo
	err := s.conn.QueryRow(ctx,
		`SELECT id, name, COALESCE(file_type, '')
		 FROM kb_file
		 WHERE id = $1`,
		fileID,
	).Scan(&doc.ID, &doc.Name, &doc.FileType)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, fmt.Errorf("file %s not found", fileID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file %s: %w", fileID, err)
	}
	return &doc, nil
}

// ListCompletedPages returns the file's recognized pages ordered by page
// index. Only pages whose recognition finished are included.
func (s *Store) ListCompletedPages(ctx context.Context, fileID string) ([]common.PageRecord, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT page_index, COALESCE(content, '')
		 FROM kb_file_page
		 WHERE file_id = $1 AND status = 'completed'
		 ORDER BY page_index`,
		fileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages for %s: %w", fileID, err)
	}
	defer rows.Close()

	var pages []common.PageRecord
	for rows.Next() {
		var page common.PageRecord
		if err := rows.Scan(&page.PageIndex, &page.Text); err != nil {
			return nil, fmt.Errorf("failed to scan page row: %w", err)
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read page rows: %w", err)
	}
	return pages, nil
}

// FileContent returns the file's full recognized text.
func (s *Store) FileContent(ctx context.Context, fileID string) (string, error) {
	var content string
	err := s.conn.QueryRow(ctx,
		`SELECT COALESCE(content, '') FROM kb_file WHERE id = $1`,
		fileID,
	).Scan(&content)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return "", fmt.Errorf("file %s not found", fileID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query content for %s: %w", fileID, err)
	}
	return content, nil
}
