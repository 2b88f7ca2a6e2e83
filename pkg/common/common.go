package common

import "time"

// PageRecord is one physical document page that has completed text
// recognition. Pages are ordered by index and immutable inputs to the
// graph engine; they are owned by the upstream document pipeline.
type PageRecord struct {
	PageIndex int    `json:"page_index"`
	Text      string `json:"text"`
}

// Entity is a node in the knowledge graph. The same shape is used for
// chunk-local extractions and for the merged whole-document output.
//
// ID may be missing or malformed in model output and is derived from
// Name during parsing; SourcePages records the pages the entity was
// observed on.
type Entity struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Aliases     []string `json:"aliases"`
	SourcePages []int    `json:"source_pages"`
}

// Relationship is a directed, typed edge between two entities. Endpoints
// are referenced by id and/or surface name as emitted by the model and
// resolved to canonical entities during the merge.
type Relationship struct {
	FromID      string   `json:"from_id"`
	ToID        string   `json:"to_id"`
	FromName    string   `json:"from_name"`
	ToName      string   `json:"to_name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	SourcePages []int    `json:"source_pages"`
}

// KnowledgeGraphData is the merged extraction result for one document.
// It is the only structure that crosses into persistence.
type KnowledgeGraphData struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
}

// Empty reports whether the graph holds no entities and no relationships.
func (d KnowledgeGraphData) Empty() bool {
	return len(d.Entities) == 0 && len(d.Relationships) == 0
}

// ChunkResult is the extraction output of one page chunk. Pages holds the
// page numbers the chunk covered; chunks that yielded nothing are dropped
// before the merge.
type ChunkResult struct {
	Pages []int
	Data  KnowledgeGraphData
}

// DocumentInfo carries display metadata about the file a graph belongs to.
type DocumentInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FileType string `json:"file_type"`
}

// Graph generation lifecycle states for a file. A file starts at "none",
// moves to "pending" when a job is queued, "processing" while the worker
// runs it, and ends at "completed" or "failed".
const (
	GraphStatusNone       = "none"
	GraphStatusPending    = "pending"
	GraphStatusProcessing = "processing"
	GraphStatusCompleted  = "completed"
	GraphStatusFailed     = "failed"
)

// GraphGenerationStatus is the per-file generation state exposed to API
// callers. Error carries the last failure message and is empty otherwise.
type GraphGenerationStatus struct {
	FileID    string    `json:"file_id"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GraphNode is the viewer-facing node shape.
type GraphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// GraphEdge is the viewer-facing edge shape.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// GraphView is the query result consumed by downstream graph viewers.
type GraphView struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
