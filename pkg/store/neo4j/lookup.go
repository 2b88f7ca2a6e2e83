package neo4j

import (
	"strings"

	"github.com/CiZaii/ai-middle-platform/pkg/common"
)

// normalizeKey folds an entity reference into its lookup form: lowercase
// with whitespace collapsed to single spaces.
func normalizeKey(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}

// nodeID is the stored node identifier for an entity: the document id
// joined with the entity's identifier.
func nodeID(fileID string, entityID string) string {
	return fileID + "::" + entityID
}

// buildEndpointLookup indexes every surface form of the document's
// entities so relationship endpoints can be resolved to node ids. Keys
// are the raw identifier, its normalized form, the display name, and
// every alias. Earlier entities win key collisions.
func buildEndpointLookup(fileID string, entities []common.Entity) map[string]string {
	lookup := make(map[string]string, len(entities)*2)
	put := func(key string, id string) {
		if key == "" {
			return
		}
		if _, ok := lookup[key]; !ok {
			lookup[key] = id
		}
	}

	for _, entity := range entities {
		id := nodeID(fileID, entity.ID)
		put(entity.ID, id)
		put(normalizeKey(entity.ID), id)
		put(normalizeKey(entity.Name), id)
		for _, alias := range entity.Aliases {
			put(normalizeKey(alias), id)
		}
	}
	return lookup
}

// resolveEndpoint finds the node id for one relationship endpoint, trying
// the identifier first and the name second.
func resolveEndpoint(lookup map[string]string, id string, name string) (string, bool) {
	if trimmed := strings.TrimSpace(id); trimmed != "" {
		if found, ok := lookup[trimmed]; ok {
			return found, true
		}
		if found, ok := lookup[normalizeKey(trimmed)]; ok {
			return found, true
		}
	}
	if normalized := normalizeKey(name); normalized != "" {
		if found, ok := lookup[normalized]; ok {
			return found, true
		}
	}
	return "", false
}

// escapeRelType makes a sanitized relationship type safe to splice into a
// Cypher pattern as a quoted identifier.
func escapeRelType(relType string) string {
	return "`" + strings.ReplaceAll(relType, "`", "``") + "`"
}
