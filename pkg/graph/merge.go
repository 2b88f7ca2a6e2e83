package graph

import (
	"sort"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/CiZaii/ai-middle-platform/pkg/common"
	"github.com/CiZaii/ai-middle-platform/pkg/logger"
)

// maxMergedDescriptions caps how many distinct descriptions are joined
// into one output description.
const maxMergedDescriptions = 3

// maxOutputAliases caps the alias list carried into persistence.
const maxOutputAliases = 10

// defaultEntityType labels entities that were never observed with a type.
const defaultEntityType = "concept"

// orderedStrings is an insertion-ordered string set. Blank values are
// ignored; values are trimmed on insert.
type orderedStrings struct {
	seen   map[string]struct{}
	values []string
}

func newOrderedStrings() *orderedStrings {
	return &orderedStrings{seen: make(map[string]struct{})}
}

func (s *orderedStrings) add(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if _, ok := s.seen[value]; ok {
		return
	}
	s.seen[value] = struct{}{}
	s.values = append(s.values, value)
}

// aggregateEntity accumulates every observation of one canonical entity
// across chunks. The first identifier ever seen stays the preferred id
// used for output and cross-references; names, aliases, types,
// descriptions and pages keep accumulating.
type aggregateEntity struct {
	canonicalKey string
	displayName  string
	names        *orderedStrings
	aliases      *orderedStrings
	identifiers  *orderedStrings
	preferredID  string
	typeCounts   map[string]int
	typeOrder    []string
	descriptions *orderedStrings
	pages        map[int]struct{}
}

func newAggregateEntity(canonicalKey string, seed common.Entity) *aggregateEntity {
	agg := &aggregateEntity{
		canonicalKey: canonicalKey,
		names:        newOrderedStrings(),
		aliases:      newOrderedStrings(),
		identifiers:  newOrderedStrings(),
		typeCounts:   make(map[string]int),
		descriptions: newOrderedStrings(),
		pages:        make(map[int]struct{}),
	}
	if name := strings.TrimSpace(seed.Name); name != "" {
		agg.displayName = name
		agg.names.add(name)
	} else {
		agg.displayName = canonicalKey
	}
	agg.registerIdentifier(seed.ID)
	for _, alias := range seed.Aliases {
		agg.aliases.add(alias)
	}
	return agg
}

func (a *aggregateEntity) registerIdentifier(id string) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return
	}
	a.identifiers.add(trimmed)
	if a.preferredID == "" {
		a.preferredID = trimmed
	}
}

func (a *aggregateEntity) merge(entity common.Entity, chunkPages []int) {
	a.registerIdentifier(entity.ID)

	if name := strings.TrimSpace(entity.Name); name != "" {
		a.names.add(name)
		// An aggregate created from an id-only mention carries its
		// canonical key as a stand-in display name until a real name
		// shows up.
		if a.displayName == "" || strings.EqualFold(a.displayName, a.canonicalKey) {
			a.displayName = name
		}
	}

	if entityType := strings.TrimSpace(entity.Type); entityType != "" {
		if _, ok := a.typeCounts[entityType]; !ok {
			a.typeOrder = append(a.typeOrder, entityType)
		}
		a.typeCounts[entityType]++
	}

	a.descriptions.add(entity.Description)

	for _, alias := range entity.Aliases {
		a.aliases.add(alias)
	}

	for _, page := range entity.SourcePages {
		a.pages[page] = struct{}{}
	}
	for _, page := range chunkPages {
		a.pages[page] = struct{}{}
	}
}

func (a *aggregateEntity) preferred() string {
	if a.preferredID != "" {
		return a.preferredID
	}
	return a.canonicalKey
}

func (a *aggregateEntity) display() string {
	if a.displayName != "" {
		return a.displayName
	}
	if len(a.names.values) > 0 {
		return a.names.values[0]
	}
	return a.canonicalKey
}

// matches reports whether the candidate name is close enough to any of
// the aggregate's names or aliases to be the same entity.
func (a *aggregateEntity) matches(candidateName string) bool {
	normalizedCandidate := normalizeName(candidateName)
	if normalizedCandidate == "" {
		return false
	}
	for _, name := range a.names.values {
		if similarNames(normalizeName(name), normalizedCandidate) {
			return true
		}
	}
	for _, alias := range a.aliases.values {
		if similarNames(normalizeName(alias), normalizedCandidate) {
			return true
		}
	}
	return false
}

// resolvedType is the majority vote over observed types, ties broken by
// the longer type string, defaulting when no type was ever seen.
func (a *aggregateEntity) resolvedType() string {
	best := ""
	bestCount := 0
	for _, entityType := range a.typeOrder {
		count := a.typeCounts[entityType]
		if count > bestCount || (count == bestCount && len(entityType) > len(best)) {
			best = entityType
			bestCount = count
		}
	}
	if best == "" {
		return defaultEntityType
	}
	return best
}

func (a *aggregateEntity) toEntity() common.Entity {
	displayName := a.display()
	normalizedDisplay := normalizeName(displayName)

	description := strings.Join(firstN(a.descriptions.values, maxMergedDescriptions), "\n")

	aliases := make([]string, 0, len(a.aliases.values))
	for _, alias := range a.aliases.values {
		if normalizeName(alias) == normalizedDisplay {
			continue
		}
		aliases = append(aliases, alias)
		if len(aliases) == maxOutputAliases {
			break
		}
	}

	return common.Entity{
		ID:          a.preferred(),
		Name:        displayName,
		Type:        a.resolvedType(),
		Description: description,
		Aliases:     aliases,
		SourcePages: sortedPages(a.pages),
	}
}

// aggregateRelationship accumulates every observation of one directed,
// typed edge between two canonical entities.
type aggregateRelationship struct {
	fromID       string
	toID         string
	relType      string
	fromName     string
	toName       string
	descriptions *orderedStrings
	pages        map[int]struct{}
}

func (r *aggregateRelationship) merge(rel common.Relationship, chunkPages []int) {
	r.descriptions.add(rel.Description)
	for _, page := range rel.SourcePages {
		r.pages[page] = struct{}{}
	}
	for _, page := range chunkPages {
		r.pages[page] = struct{}{}
	}
}

func (r *aggregateRelationship) toRelationship() common.Relationship {
	return common.Relationship{
		FromID:      r.fromID,
		ToID:        r.toID,
		FromName:    r.fromName,
		ToName:      r.toName,
		Type:        r.relType,
		Description: strings.Join(firstN(r.descriptions.values, maxMergedDescriptions), "\n"),
		SourcePages: sortedPages(r.pages),
	}
}

// entityResolver folds per-chunk entities into canonical aggregates and
// keeps a lookup index from every normalized name, alias and identifier
// to the owning aggregate. State lives for one generation run only.
type entityResolver struct {
	order  []string
	byKey  map[string]*aggregateEntity
	lookup map[string]*aggregateEntity
}

func newEntityResolver() *entityResolver {
	return &entityResolver{
		byKey:  make(map[string]*aggregateEntity),
		lookup: make(map[string]*aggregateEntity),
	}
}

// fold merges one chunk's entities in order. Later chunks benefit from
// names and aliases learned here, which is why chunk processing must stay
// sequential.
func (r *entityResolver) fold(chunk common.ChunkResult) {
	for _, entity := range chunk.Data.Entities {
		if strings.TrimSpace(entity.Name) == "" {
			continue
		}
		agg := r.resolve(entity)
		agg.merge(entity, chunk.Pages)
		r.register(agg)
	}
}

// resolve finds the aggregate an incoming entity belongs to: by
// normalized id, then normalized name, then any normalized alias, and
// finally creates a fresh aggregate.
func (r *entityResolver) resolve(entity common.Entity) *aggregateEntity {
	normalizedID := normalizeIdentifier(entity.ID)
	if normalizedID != "" {
		if existing, ok := r.lookup[normalizedID]; ok {
			return existing
		}
	}
	normalizedName := normalizeName(entity.Name)
	if normalizedName != "" {
		if existing, ok := r.lookup[normalizedName]; ok {
			return existing
		}
	}
	for _, alias := range entity.Aliases {
		if aliasNormalized := normalizeName(alias); aliasNormalized != "" {
			if existing, ok := r.lookup[aliasNormalized]; ok {
				return existing
			}
		}
	}

	canonicalKey := normalizedID
	if canonicalKey == "" {
		canonicalKey = normalizedName
	}
	if canonicalKey == "" {
		canonicalKey = gonanoid.Must()
	}
	if existing, ok := r.byKey[canonicalKey]; ok {
		return existing
	}
	agg := newAggregateEntity(canonicalKey, entity)
	r.byKey[canonicalKey] = agg
	r.order = append(r.order, canonicalKey)
	return agg
}

// register indexes the aggregate's full current name, alias and
// identifier set so later chunks can match on newly learned surface forms.
func (r *entityResolver) register(agg *aggregateEntity) {
	for _, name := range agg.names.values {
		if normalized := normalizeName(name); normalized != "" {
			r.lookup[normalized] = agg
		}
	}
	for _, alias := range agg.aliases.values {
		if normalized := normalizeName(alias); normalized != "" {
			r.lookup[normalized] = agg
		}
	}
	for _, id := range agg.identifiers.values {
		if normalized := normalizeIdentifier(id); normalized != "" {
			r.lookup[normalized] = agg
		}
	}
}

// findByReference resolves a relationship endpoint: exact id lookup,
// exact name lookup, then a linear fuzzy scan over all aggregates.
func (r *entityResolver) findByReference(id string, name string) *aggregateEntity {
	if normalizedID := normalizeIdentifier(id); normalizedID != "" {
		if existing, ok := r.lookup[normalizedID]; ok {
			return existing
		}
	}
	if normalizedName := normalizeName(name); normalizedName != "" {
		if existing, ok := r.lookup[normalizedName]; ok {
			return existing
		}
	}
	if strings.TrimSpace(name) != "" {
		for _, key := range r.order {
			if candidate := r.byKey[key]; candidate.matches(name) {
				return candidate
			}
		}
	}
	return nil
}

// mergeChunkResults folds all chunk extractions, in chunk order, into one
// consistent deduplicated graph. Relationships whose endpoints cannot be
// resolved to a known entity are dropped.
func mergeChunkResults(results []common.ChunkResult) common.KnowledgeGraphData {
	if len(results) == 0 {
		return common.KnowledgeGraphData{}
	}

	resolver := newEntityResolver()
	for _, chunk := range results {
		resolver.fold(chunk)
	}

	relOrder := make([]string, 0)
	relByKey := make(map[string]*aggregateRelationship)
	for _, chunk := range results {
		for _, rel := range chunk.Data.Relationships {
			fromEntity := resolver.findByReference(rel.FromID, rel.FromName)
			toEntity := resolver.findByReference(rel.ToID, rel.ToName)
			if fromEntity == nil || toEntity == nil {
				logger.Debug("Dropping relationship with unresolved endpoint",
					"from_id", rel.FromID, "from_name", rel.FromName,
					"to_id", rel.ToID, "to_name", rel.ToName,
				)
				continue
			}

			relType := sanitizeRelationType(rel.Type)
			key := fromEntity.preferred() + "->" + toEntity.preferred() + "::" + relType
			agg, ok := relByKey[key]
			if !ok {
				agg = &aggregateRelationship{
					fromID:       fromEntity.preferred(),
					toID:         toEntity.preferred(),
					relType:      relType,
					fromName:     fromEntity.display(),
					toName:       toEntity.display(),
					descriptions: newOrderedStrings(),
					pages:        make(map[int]struct{}),
				}
				relByKey[key] = agg
				relOrder = append(relOrder, key)
			}
			agg.merge(rel, chunk.Pages)
		}
	}

	entities := make([]common.Entity, 0, len(resolver.order))
	for _, key := range resolver.order {
		entities = append(entities, resolver.byKey[key].toEntity())
	}
	relationships := make([]common.Relationship, 0, len(relOrder))
	for _, key := range relOrder {
		relationships = append(relationships, relByKey[key].toRelationship())
	}

	return common.KnowledgeGraphData{
		Entities:      entities,
		Relationships: relationships,
	}
}

func firstN(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}

func sortedPages(pages map[int]struct{}) []int {
	if len(pages) == 0 {
		return nil
	}
	sorted := make([]int, 0, len(pages))
	for page := range pages {
		sorted = append(sorted, page)
	}
	sort.Ints(sorted)
	return sorted
}
