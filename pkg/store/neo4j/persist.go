package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/CiZaii/ai-middle-platform/pkg/common"
	"github.com/CiZaii/ai-middle-platform/pkg/logger"
)

// membershipType links every entity node to its document node.
const membershipType = "BELONGS_TO"

// ReplaceDocumentGraph rebuilds the stored graph for one document inside
// a single write transaction: delete everything owned by the document,
// recreate the document node, then the entity nodes, membership edges and
// typed relationship edges. Rerunning with the same data is a no-op
// observationally.
func (c *Client) ReplaceDocumentGraph(ctx context.Context, doc common.DocumentInfo, data common.KnowledgeGraphData) error {
	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	entityRows := make([]map[string]any, 0, len(data.Entities))
	for _, entity := range data.Entities {
		props := map[string]any{
			"document_id": doc.ID,
			"name":        entity.Name,
			"type":        entity.Type,
		}
		if entity.Description != "" {
			props["description"] = entity.Description
		}
		if len(entity.Aliases) > 0 {
			props["aliases"] = entity.Aliases
		}
		if len(entity.SourcePages) > 0 {
			props["source_pages"] = entity.SourcePages
		}
		entityRows = append(entityRows, map[string]any{
			"id":    nodeID(doc.ID, entity.ID),
			"props": props,
		})
	}

	lookup := buildEndpointLookup(doc.ID, data.Entities)
	relRowsByType := make(map[string][]map[string]any)
	typeOrder := make([]string, 0)
	skipped := 0
	for _, rel := range data.Relationships {
		fromID, fromOK := resolveEndpoint(lookup, rel.FromID, rel.FromName)
		toID, toOK := resolveEndpoint(lookup, rel.ToID, rel.ToName)
		if !fromOK || !toOK {
			skipped++
			logger.Debug("[Neo4j] Skipping edge with unknown endpoint",
				"document_id", doc.ID,
				"from", rel.FromID, "to", rel.ToID, "type", rel.Type,
			)
			continue
		}

		row := map[string]any{"from": fromID, "to": toID}
		if rel.Description != "" {
			row["description"] = rel.Description
		}
		if len(rel.SourcePages) > 0 {
			row["source_pages"] = rel.SourcePages
		}
		if _, ok := relRowsByType[rel.Type]; !ok {
			typeOrder = append(typeOrder, rel.Type)
		}
		relRowsByType[rel.Type] = append(relRowsByType[rel.Type], row)
	}
	if skipped > 0 {
		logger.Warn("[Neo4j] Skipped edges with unresolvable endpoints",
			"document_id", doc.ID, "skipped", skipped,
		)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := deleteDocumentTx(ctx, tx, doc.ID); err != nil {
			return nil, err
		}

		_, err := tx.Run(ctx,
			`MERGE (d:Document {id: $id})
			 SET d.name = $name, d.file_type = $fileType, d.updated_at = datetime()`,
			map[string]any{"id": doc.ID, "name": doc.Name, "fileType": doc.FileType},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to write document node: %w", err)
		}

		if len(entityRows) > 0 {
			_, err = tx.Run(ctx,
				`UNWIND $rows AS row
				 MATCH (d:Document {id: $docId})
				 MERGE (e:Entity {id: row.id})
				 SET e += row.props
				 MERGE (e)-[:`+membershipType+`]->(d)`,
				map[string]any{"docId": doc.ID, "rows": entityRows},
			)
			if err != nil {
				return nil, fmt.Errorf("failed to write entity nodes: %w", err)
			}
		}

		for _, relType := range typeOrder {
			_, err = tx.Run(ctx,
				`UNWIND $rows AS row
				 MATCH (from:Entity {id: row.from})
				 MATCH (to:Entity {id: row.to})
				 MERGE (from)-[r:`+escapeRelType(relType)+`]->(to)
				 SET r.description = row.description, r.source_pages = row.source_pages`,
				map[string]any{"rows": relRowsByType[relType]},
			)
			if err != nil {
				return nil, fmt.Errorf("failed to write %s edges: %w", relType, err)
			}
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace graph for document %s: %w", doc.ID, err)
	}

	logger.Info("[Neo4j] Graph stored",
		"document_id", doc.ID,
		"entities", len(entityRows),
		"edge_types", len(typeOrder),
	)
	return nil
}

// DeleteDocumentGraph removes the document node and every entity owned by
// the document.
func (c *Client) DeleteDocumentGraph(ctx context.Context, fileID string) error {
	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, deleteDocumentTx(ctx, tx, fileID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete graph for document %s: %w", fileID, err)
	}
	return nil
}

func deleteDocumentTx(ctx context.Context, tx neo4j.ManagedTransaction, fileID string) error {
	_, err := tx.Run(ctx,
		`MATCH (e:Entity {document_id: $id}) DETACH DELETE e`,
		map[string]any{"id": fileID},
	)
	if err != nil {
		return fmt.Errorf("failed to delete entities: %w", err)
	}
	_, err = tx.Run(ctx,
		`MATCH (d:Document {id: $id}) DETACH DELETE d`,
		map[string]any{"id": fileID},
	)
	if err != nil {
		return fmt.Errorf("failed to delete document node: %w", err)
	}
	return nil
}
