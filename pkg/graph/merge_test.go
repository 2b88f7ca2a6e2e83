package graph

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/CiZaii/ai-middle-platform/pkg/common"
)

func chunkWith(pages []int, entities []common.Entity, relationships []common.Relationship) common.ChunkResult {
	return common.ChunkResult{
		Pages: pages,
		Data: common.KnowledgeGraphData{
			Entities:      entities,
			Relationships: relationships,
		},
	}
}

func TestMergeChunkResultsEmpty(t *testing.T) {
	if got := mergeChunkResults(nil); !got.Empty() {
		t.Fatalf("expected empty data, got %+v", got)
	}
	if got := mergeChunkResults([]common.ChunkResult{}); !got.Empty() {
		t.Fatalf("expected empty data, got %+v", got)
	}
}

func TestMergeDeduplicatesByID(t *testing.T) {
	results := []common.ChunkResult{
		chunkWith([]int{1, 2}, []common.Entity{
			{ID: "acme-corp", Name: "Acme Corp", Type: "organization", Description: "A company.", SourcePages: []int{1}},
		}, nil),
		chunkWith([]int{3, 4}, []common.Entity{
			{ID: "acme-corp", Name: "ACME Corporation", Type: "organization", Description: "Maker of everything.", SourcePages: []int{4}},
		}, nil),
	}

	merged := mergeChunkResults(results)

	if len(merged.Entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(merged.Entities))
	}
	entity := merged.Entities[0]
	if entity.ID != "acme-corp" {
		t.Fatalf("got id %q, want acme-corp", entity.ID)
	}
	if entity.Name != "Acme Corp" {
		t.Fatalf("display name should stay first-seen, got %q", entity.Name)
	}
	if !reflect.DeepEqual(entity.SourcePages, []int{1, 2, 3, 4}) {
		t.Fatalf("got pages %v, want union [1 2 3 4]", entity.SourcePages)
	}
	if !strings.Contains(entity.Description, "A company.") || !strings.Contains(entity.Description, "Maker of everything.") {
		t.Fatalf("descriptions not merged: %q", entity.Description)
	}
}

func TestMergeByNormalizedName(t *testing.T) {
	results := []common.ChunkResult{
		chunkWith([]int{1}, []common.Entity{
			{ID: "acme-corp", Name: "Acme Corp", Type: "organization"},
		}, nil),
		chunkWith([]int{2}, []common.Entity{
			{ID: "the-acme", Name: "acme  CORP", Type: "organization"},
		}, nil),
	}

	merged := mergeChunkResults(results)

	if len(merged.Entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(merged.Entities))
	}
	if merged.Entities[0].ID != "acme-corp" {
		t.Fatalf("preferred id should be first-seen, got %q", merged.Entities[0].ID)
	}
}

func TestAliasLearning(t *testing.T) {
	// Chunk one introduces the alias; chunk two refers to the entity only
	// by that alias under a different identifier.
	results := []common.ChunkResult{
		chunkWith([]int{1}, []common.Entity{
			{ID: "international-business-machines", Name: "International Business Machines", Type: "organization", Aliases: []string{"IBM"}},
		}, nil),
		chunkWith([]int{2}, []common.Entity{
			{ID: "ibm", Name: "IBM", Type: "organization", Description: "Hardware vendor."},
		}, nil),
	}

	merged := mergeChunkResults(results)

	if len(merged.Entities) != 1 {
		t.Fatalf("alias mention should merge, got %d entities", len(merged.Entities))
	}
	entity := merged.Entities[0]
	if entity.ID != "international-business-machines" {
		t.Fatalf("got id %q, want first-seen id", entity.ID)
	}
	if !reflect.DeepEqual(entity.SourcePages, []int{1, 2}) {
		t.Fatalf("got pages %v, want [1 2]", entity.SourcePages)
	}
}

func TestTypeMajorityVote(t *testing.T) {
	makeChunk := func(page int, entityType string) common.ChunkResult {
		return chunkWith([]int{page}, []common.Entity{
			{ID: "acme", Name: "Acme", Type: entityType},
		}, nil)
	}

	t.Run("majority wins", func(t *testing.T) {
		merged := mergeChunkResults([]common.ChunkResult{
			makeChunk(1, "organization"),
			makeChunk(2, "organization"),
			makeChunk(3, "company"),
		})
		if merged.Entities[0].Type != "organization" {
			t.Fatalf("got type %q, want organization", merged.Entities[0].Type)
		}
	})

	t.Run("tie breaks to longer", func(t *testing.T) {
		merged := mergeChunkResults([]common.ChunkResult{
			makeChunk(1, "org"),
			makeChunk(2, "organization"),
		})
		if merged.Entities[0].Type != "organization" {
			t.Fatalf("got type %q, want organization", merged.Entities[0].Type)
		}
	})

	t.Run("untyped defaults", func(t *testing.T) {
		merged := mergeChunkResults([]common.ChunkResult{makeChunk(1, "")})
		if merged.Entities[0].Type != "concept" {
			t.Fatalf("got type %q, want concept", merged.Entities[0].Type)
		}
	})
}

func TestMergeSkipsBlankNames(t *testing.T) {
	merged := mergeChunkResults([]common.ChunkResult{
		chunkWith([]int{1}, []common.Entity{
			{ID: "ghost", Name: "   "},
			{ID: "real", Name: "Real Entity"},
		}, nil),
	})
	if len(merged.Entities) != 1 || merged.Entities[0].ID != "real" {
		t.Fatalf("blank-name entity should be skipped, got %+v", merged.Entities)
	}
}

func TestDescriptionCap(t *testing.T) {
	results := make([]common.ChunkResult, 0, 5)
	for i := 1; i <= 5; i++ {
		results = append(results, chunkWith([]int{i}, []common.Entity{
			{ID: "acme", Name: "Acme", Description: fmt.Sprintf("Description %d.", i)},
		}, nil))
	}

	merged := mergeChunkResults(results)

	lines := strings.Split(merged.Entities[0].Description, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d description lines, want 3", len(lines))
	}
	if lines[0] != "Description 1." {
		t.Fatalf("descriptions should keep first-seen order, got %q", lines[0])
	}
}

func TestOutputAliasesExcludeDisplayName(t *testing.T) {
	merged := mergeChunkResults([]common.ChunkResult{
		chunkWith([]int{1}, []common.Entity{
			{ID: "acme", Name: "Acme Corp", Aliases: []string{"ACME  CORP", "Acme", "The Acme Company"}},
		}, nil),
	})

	aliases := merged.Entities[0].Aliases
	for _, alias := range aliases {
		if normalizeName(alias) == normalizeName("Acme Corp") {
			t.Fatalf("display name variant %q should be excluded from aliases", alias)
		}
	}
	if !reflect.DeepEqual(aliases, []string{"Acme", "The Acme Company"}) {
		t.Fatalf("got aliases %v", aliases)
	}
}

func TestRelationshipResolution(t *testing.T) {
	entities := []common.Entity{
		{ID: "acme-corp", Name: "Acme Corp", Type: "organization"},
		{ID: "jane-doe", Name: "Jane Doe", Type: "person"},
	}

	tests := []struct {
		name     string
		rel      common.Relationship
		resolved bool
	}{
		{
			name:     "by id",
			rel:      common.Relationship{FromID: "jane-doe", ToID: "acme-corp", Type: "works at"},
			resolved: true,
		},
		{
			name:     "by exact name",
			rel:      common.Relationship{FromName: "Jane Doe", ToName: "Acme Corp", Type: "works at"},
			resolved: true,
		},
		{
			name:     "extra whitespace",
			rel:      common.Relationship{FromName: "Jane Doe", ToName: "Acme  Corp", Type: "works at"},
			resolved: true,
		},
		{
			name:     "compact form",
			rel:      common.Relationship{FromName: "Jane Doe", ToName: "AcmeCorp", Type: "works at"},
			resolved: true,
		},
		{
			name:     "one char typo",
			rel:      common.Relationship{FromName: "Jane Doe", ToName: "Acme Corpo", Type: "works at"},
			resolved: true,
		},
		{
			name:     "unknown company",
			rel:      common.Relationship{FromName: "Jane Doe", ToName: "Globex Inc", Type: "works at"},
			resolved: false,
		},
		{
			name:     "both unknown",
			rel:      common.Relationship{FromName: "Nobody", ToName: "Globex Inc", Type: "works at"},
			resolved: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := mergeChunkResults([]common.ChunkResult{
				chunkWith([]int{1}, entities, []common.Relationship{tt.rel}),
			})
			if tt.resolved && len(merged.Relationships) != 1 {
				t.Fatalf("expected relationship to resolve, got %+v", merged.Relationships)
			}
			if !tt.resolved && len(merged.Relationships) != 0 {
				t.Fatalf("expected relationship to be dropped, got %+v", merged.Relationships)
			}
		})
	}
}

func TestRelationshipEndpointsRewritten(t *testing.T) {
	merged := mergeChunkResults([]common.ChunkResult{
		chunkWith([]int{1}, []common.Entity{
			{ID: "acme-corp", Name: "Acme Corp"},
			{ID: "jane-doe", Name: "Jane Doe"},
		}, []common.Relationship{
			{FromName: "Jane Doe", ToName: "AcmeCorp", Type: "works at", Description: "Employment."},
		}),
	})

	if len(merged.Relationships) != 1 {
		t.Fatalf("got %d relationships, want 1", len(merged.Relationships))
	}
	rel := merged.Relationships[0]
	if rel.FromID != "jane-doe" || rel.ToID != "acme-corp" {
		t.Fatalf("endpoints not rewritten to canonical ids: %+v", rel)
	}
	if rel.FromName != "Jane Doe" || rel.ToName != "Acme Corp" {
		t.Fatalf("endpoint names not canonical: %+v", rel)
	}
	if rel.Type != "works_at" {
		t.Fatalf("got type %q, want works_at", rel.Type)
	}
}

func TestRelationshipDeduplication(t *testing.T) {
	entities := []common.Entity{
		{ID: "acme-corp", Name: "Acme Corp"},
		{ID: "jane-doe", Name: "Jane Doe"},
	}
	rel := func(description string, pages ...int) common.Relationship {
		return common.Relationship{
			FromID:      "jane-doe",
			ToID:        "acme-corp",
			Type:        "works at",
			Description: description,
			SourcePages: pages,
		}
	}

	merged := mergeChunkResults([]common.ChunkResult{
		chunkWith([]int{1}, entities, []common.Relationship{rel("Employment.", 1)}),
		chunkWith([]int{3}, nil, []common.Relationship{rel("Employment.", 3), rel("Long tenure.")}),
	})

	if len(merged.Relationships) != 1 {
		t.Fatalf("got %d relationships, want 1", len(merged.Relationships))
	}
	out := merged.Relationships[0]
	if !reflect.DeepEqual(out.SourcePages, []int{1, 3}) {
		t.Fatalf("got pages %v, want [1 3]", out.SourcePages)
	}
	if strings.Count(out.Description, "Employment.") != 1 {
		t.Fatalf("duplicate description not collapsed: %q", out.Description)
	}
	if !strings.Contains(out.Description, "Long tenure.") {
		t.Fatalf("second description missing: %q", out.Description)
	}
}

func TestDifferentTypesStayDistinct(t *testing.T) {
	entities := []common.Entity{
		{ID: "acme-corp", Name: "Acme Corp"},
		{ID: "jane-doe", Name: "Jane Doe"},
	}
	merged := mergeChunkResults([]common.ChunkResult{
		chunkWith([]int{1}, entities, []common.Relationship{
			{FromID: "jane-doe", ToID: "acme-corp", Type: "works at"},
			{FromID: "jane-doe", ToID: "acme-corp", Type: "founded"},
		}),
	})
	if len(merged.Relationships) != 2 {
		t.Fatalf("got %d relationships, want 2", len(merged.Relationships))
	}
}

func TestMergeIdempotence(t *testing.T) {
	results := []common.ChunkResult{
		chunkWith([]int{1, 2}, []common.Entity{
			{ID: "acme-corp", Name: "Acme Corp", Type: "organization", Description: "A company.", Aliases: []string{"Acme"}},
			{ID: "jane-doe", Name: "Jane Doe", Type: "person"},
		}, []common.Relationship{
			{FromID: "jane-doe", ToID: "acme-corp", Type: "works at", Description: "Employment.", SourcePages: []int{2}},
		}),
		chunkWith([]int{3}, []common.Entity{
			{ID: "acme-corp", Name: "ACME", Type: "organization"},
		}, nil),
	}

	first := mergeChunkResults(results)
	second := mergeChunkResults(append(append([]common.ChunkResult{}, results...), results...))

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("merging the same chunks again changed the output:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
