// Package store defines the storage interfaces the engine depends on.
// Concrete implementations live in the pgx and neo4j subpackages.
package store

import (
	"context"

	"github.com/CiZaii/ai-middle-platform/pkg/common"
)

// GraphStorage persists and serves document knowledge graphs.
type GraphStorage interface {
	// ReplaceDocumentGraph atomically swaps the document's graph for the
	// given data: everything previously stored for the document is
	// removed before the new nodes and edges are written.
	ReplaceDocumentGraph(ctx context.Context, doc common.DocumentInfo, data common.KnowledgeGraphData) error

	// DeleteDocumentGraph removes the document node and every entity
	// owned by the document.
	DeleteDocumentGraph(ctx context.Context, fileID string) error

	// KnowledgeGraph returns the stored graph in viewer shape.
	KnowledgeGraph(ctx context.Context, fileID string) (*common.GraphView, error)
}

// GenerationStatusStorage tracks the per-file graph generation lifecycle.
type GenerationStatusStorage interface {
	// SetGraphStatus records the file's generation state. A non-empty
	// errMsg is kept for failed runs; otherwise any previous error is
	// cleared.
	SetGraphStatus(ctx context.Context, fileID string, status string, errMsg string) error

	// GraphStatus returns the file's recorded generation state. Files
	// that never had a generation report common.GraphStatusNone.
	GraphStatus(ctx context.Context, fileID string) (*common.GraphGenerationStatus, error)
}

// DocumentStorage reads file metadata and page content from Postgres.
type DocumentStorage interface {
	// GetFile returns display metadata for a file.
	GetFile(ctx context.Context, fileID string) (*common.DocumentInfo, error)

	// ListCompletedPages returns the file's recognized pages ordered by
	// page index. Pages still being processed are excluded.
	ListCompletedPages(ctx context.Context, fileID string) ([]common.PageRecord, error)

	// FileContent returns the file's full recognized text, used as a
	// fallback when no per-page records exist.
	FileContent(ctx context.Context, fileID string) (string, error)
}
