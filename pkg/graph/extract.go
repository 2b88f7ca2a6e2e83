package graph

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/CiZaii/ai-middle-platform/pkg/common"
	"github.com/CiZaii/ai-middle-platform/pkg/llm"
	"github.com/CiZaii/ai-middle-platform/pkg/logger"
)

// extractionEntity mirrors the entity object the extraction prompt asks
// the model to emit. It is only used to derive the structured-output
// schema; actual responses are parsed tolerantly.
type extractionEntity struct {
	ID          string   `json:"id" jsonschema_description:"Stable identifier for the entity, lowercase letters, digits and hyphens"`
	Name        string   `json:"name" jsonschema_description:"Canonical surface name of the entity"`
	Type        string   `json:"type" jsonschema_description:"Entity category such as person, organization, location or concept"`
	Description string   `json:"description" jsonschema_description:"Short description of the entity based on the source text"`
	Aliases     []string `json:"aliases" jsonschema_description:"Alternative names the entity appears under"`
	SourcePages []int    `json:"sourcePages" jsonschema_description:"Page numbers the entity was observed on"`
}

type extractionRelationship struct {
	FromID      string `json:"fromId" jsonschema_description:"Identifier of the source entity"`
	From        string `json:"from" jsonschema_description:"Name of the source entity"`
	ToID        string `json:"toId" jsonschema_description:"Identifier of the target entity"`
	To          string `json:"to" jsonschema_description:"Name of the target entity"`
	Type        string `json:"type" jsonschema_description:"Relationship label"`
	Description string `json:"description" jsonschema_description:"Explanation of how the two entities are related"`
	SourcePages []int  `json:"sourcePages" jsonschema_description:"Page numbers the relationship was observed on"`
}

type extractionResponse struct {
	Entities      []extractionEntity       `json:"entities" jsonschema_description:"Entities identified in the excerpt"`
	Relationships []extractionRelationship `json:"relationships" jsonschema_description:"Relationships identified in the excerpt"`
}

// wireString accepts JSON strings, numbers and booleans where the model
// was asked for a string. Objects and arrays keep their raw encoding.
type wireString string

func (s *wireString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*s = wireString(value)
		return nil
	}
	*s = wireString(data)
	return nil
}

// wireStringList keeps only string items of a JSON array, trimmed, with
// empty entries dropped. Anything that is not an array parses as empty.
type wireStringList []string

func (l *wireStringList) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		*l = nil
		return nil
	}
	values := make([]string, 0, len(items))
	for _, item := range items {
		var value string
		if err := json.Unmarshal(item, &value); err != nil {
			continue
		}
		value = strings.TrimSpace(value)
		if value != "" {
			values = append(values, value)
		}
	}
	*l = values
	return nil
}

// wirePageList reads an integer array tolerating numeric strings; entries
// that parse as neither are ignored.
type wirePageList []int

func (l *wirePageList) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		*l = nil
		return nil
	}
	values := make([]int, 0, len(items))
	for _, item := range items {
		var number int
		if err := json.Unmarshal(item, &number); err == nil {
			values = append(values, number)
			continue
		}
		var text string
		if err := json.Unmarshal(item, &text); err == nil {
			if parsed, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
				values = append(values, parsed)
			}
		}
	}
	*l = values
	return nil
}

type wireEntity struct {
	ID          wireString     `json:"id"`
	Name        wireString     `json:"name"`
	Type        wireString     `json:"type"`
	Description wireString     `json:"description"`
	Aliases     wireStringList `json:"aliases"`
	SourcePages wirePageList   `json:"sourcePages"`
}

type wireRelationship struct {
	FromID      wireString   `json:"fromId"`
	From        wireString   `json:"from"`
	ToID        wireString   `json:"toId"`
	To          wireString   `json:"to"`
	Type        wireString   `json:"type"`
	Description wireString   `json:"description"`
	SourcePages wirePageList `json:"sourcePages"`
}

type wireGraph struct {
	Entities      []wireEntity       `json:"entities"`
	Relationships []wireRelationship `json:"relationships"`
}

// stripCodeFence removes an optional wrapping ``` fence, tolerating a
// language tag on the opening line.
func stripCodeFence(response string) string {
	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "```") {
		if firstNewline := strings.IndexByte(trimmed, '\n'); firstNewline > 0 {
			trimmed = trimmed[firstNewline+1:]
		}
		if closingFence := strings.LastIndex(trimmed, "```"); closingFence > -1 {
			trimmed = trimmed[:closingFence]
		}
	}
	return strings.TrimSpace(trimmed)
}

// parseExtraction turns a raw model response into chunk-local graph data.
// Malformed responses never fail the run: they parse to an empty result.
func parseExtraction(response string, fileID string) common.KnowledgeGraphData {
	payload := stripCodeFence(response)
	if payload == "" {
		logger.Warn("Empty extraction response", "file_id", fileID)
		return common.KnowledgeGraphData{}
	}

	var wire wireGraph
	if err := llm.UnmarshalFlexible(payload, &wire); err != nil {
		logger.Error("Failed to parse extraction response", "file_id", fileID, "err", err)
		return common.KnowledgeGraphData{}
	}

	entities := make([]common.Entity, 0, len(wire.Entities))
	for _, raw := range wire.Entities {
		name := string(raw.Name)
		id := ensureIdentifier(string(raw.ID), name)
		if id == "" {
			continue
		}
		if strings.TrimSpace(name) == "" {
			name = id
		}
		entities = append(entities, common.Entity{
			ID:          id,
			Name:        name,
			Type:        string(raw.Type),
			Description: string(raw.Description),
			Aliases:     raw.Aliases,
			SourcePages: raw.SourcePages,
		})
	}

	relationships := make([]common.Relationship, 0, len(wire.Relationships))
	for _, raw := range wire.Relationships {
		fromName := strings.TrimSpace(string(raw.From))
		toName := strings.TrimSpace(string(raw.To))
		fromID := normalizeIdentifier(string(raw.FromID))
		toID := normalizeIdentifier(string(raw.ToID))
		// An endpoint is usable with either an identifier or a name.
		if (fromID == "" && fromName == "") || (toID == "" && toName == "") {
			continue
		}
		relationships = append(relationships, common.Relationship{
			FromID:      fromID,
			ToID:        toID,
			FromName:    fromName,
			ToName:      toName,
			Type:        string(raw.Type),
			Description: string(raw.Description),
			SourcePages: raw.SourcePages,
		})
	}

	return common.KnowledgeGraphData{
		Entities:      entities,
		Relationships: relationships,
	}
}

// buildPrompt renders the extraction prompt for one chunk from the active
// template.
func buildPrompt(
	template string,
	doc common.DocumentInfo,
	chunkIndex int,
	totalChunks int,
	totalPages int,
	summary string,
	content string,
) string {
	fileType := doc.FileType
	if fileType == "" {
		fileType = "unknown"
	}
	variables := map[string]any{
		"documentName": doc.Name,
		"fileType":     fileType,
		"totalPages":   max(totalPages, 1),
		"chunkIndex":   max(chunkIndex, 1),
		"totalChunks":  max(totalChunks, 1),
		"pageSummary":  summary,
		"content":      content,
	}
	return llm.Format(template, variables)
}
