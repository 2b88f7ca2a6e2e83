package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/CiZaii/ai-middle-platform/pkg/common"
)

// KnowledgeGraph returns the stored graph for one document in viewer
// shape: entity nodes plus the typed edges between them, membership edges
// excluded. Edge labels prefer the description over the type; duplicate
// source/target/type triples collapse to one edge.
func (c *Client) KnowledgeGraph(ctx context.Context, fileID string) (*common.GraphView, error) {
	session := c.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	view, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		view := &common.GraphView{
			Nodes: make([]common.GraphNode, 0),
			Edges: make([]common.GraphEdge, 0),
		}

		nodes, err := tx.Run(ctx,
			`MATCH (e:Entity {document_id: $id})
			 RETURN e.id AS id, e.name AS name, e.type AS type
			 ORDER BY id`,
			map[string]any{"id": fileID},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query entity nodes: %w", err)
		}
		for nodes.Next(ctx) {
			record := nodes.Record()
			view.Nodes = append(view.Nodes, common.GraphNode{
				ID:    stringValue(record, "id"),
				Label: stringValue(record, "name"),
				Type:  stringValue(record, "type"),
			})
		}
		if err := nodes.Err(); err != nil {
			return nil, fmt.Errorf("failed to read entity nodes: %w", err)
		}

		edges, err := tx.Run(ctx,
			`MATCH (from:Entity {document_id: $id})-[r]->(to:Entity {document_id: $id})
			 WHERE type(r) <> '`+membershipType+`'
			 RETURN from.id AS source, to.id AS target, type(r) AS type, r.description AS description`,
			map[string]any{"id": fileID},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query edges: %w", err)
		}
		seen := make(map[string]struct{})
		for edges.Next(ctx) {
			record := edges.Record()
			source := stringValue(record, "source")
			target := stringValue(record, "target")
			edgeType := stringValue(record, "type")

			key := source + "->" + target + "::" + edgeType
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			label := stringValue(record, "description")
			if label == "" {
				label = edgeType
			}
			view.Edges = append(view.Edges, common.GraphEdge{
				Source: source,
				Target: target,
				Label:  label,
			})
		}
		if err := edges.Err(); err != nil {
			return nil, fmt.Errorf("failed to read edges: %w", err)
		}

		return view, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load graph for document %s: %w", fileID, err)
	}

	return view.(*common.GraphView), nil
}

func stringValue(record *neo4j.Record, key string) string {
	value, ok := record.Get(key)
	if !ok || value == nil {
		return ""
	}
	s, _ := value.(string)
	return s
}
