package graph

import (
	"regexp"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/text/unicode/norm"
)

const maxIdentifierLength = 80

// defaultRelationType labels relationships whose type collapses to
// nothing after sanitization.
const defaultRelationType = "related"

var (
	identifierInvalidRe = regexp.MustCompile(`[^a-z0-9-]+`)
	repeatedHyphenRe    = regexp.MustCompile(`-{2,}`)
	// ASCII punctuation and whitespace, matching what graph stores accept
	// as a bare edge type token.
	relationTypeRe = regexp.MustCompile("[\\s!-/:-@\\[-`{-~]+")
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// normalizeName canonicalizes an entity surface name for index lookups:
// Unicode compatibility form, lowercased, internal whitespace collapsed.
// Returns "" when nothing usable remains.
func normalizeName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	normalized := strings.ToLower(norm.NFKC.String(trimmed))
	return strings.Join(strings.Fields(normalized), " ")
}

// normalizeIdentifier canonicalizes an entity identifier: Unicode
// compatibility form, lowercased, runs of characters outside [a-z0-9-]
// replaced by a single hyphen, repeated hyphens collapsed, surrounding
// hyphens stripped, capped at 80 characters. Returns "" when the result
// is unusable.
func normalizeIdentifier(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	normalized := strings.ToLower(norm.NFKC.String(trimmed))
	normalized = identifierInvalidRe.ReplaceAllString(normalized, "-")
	normalized = repeatedHyphenRe.ReplaceAllString(normalized, "-")
	normalized = strings.Trim(normalized, "-")
	if normalized == "" {
		return ""
	}
	if len(normalized) > maxIdentifierLength {
		normalized = normalized[:maxIdentifierLength]
	}
	return normalized
}

// ensureIdentifier derives a usable identifier from the candidate id,
// falling back to the paired name, and finally to a generated one.
func ensureIdentifier(candidateID string, fallbackName string) string {
	if sanitized := normalizeIdentifier(candidateID); sanitized != "" {
		return sanitized
	}
	if derived := normalizeIdentifier(fallbackName); derived != "" {
		return derived
	}
	return "entity-" + gonanoid.Must()
}

// sanitizeRelationType turns a free-text relationship label into a safe
// edge type token.
func sanitizeRelationType(relationType string) string {
	sanitized := relationTypeRe.ReplaceAllString(strings.TrimSpace(relationType), "_")
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		return defaultRelationType
	}
	return sanitized
}

// similarNames reports whether two already-normalized names refer to the
// same entity: equal, equal or containing after whitespace removal, or
// within Levenshtein distance 2 of each other on the compact forms.
// Deliberately not special-cased for short names; downstream consumers
// depend on the current merge rate.
func similarNames(left string, right string) bool {
	if left == "" || right == "" {
		return false
	}
	if left == right {
		return true
	}
	compactLeft := whitespaceRe.ReplaceAllString(left, "")
	compactRight := whitespaceRe.ReplaceAllString(right, "")
	if compactLeft == compactRight {
		return true
	}
	if strings.Contains(compactLeft, compactRight) || strings.Contains(compactRight, compactLeft) {
		return true
	}
	return levenshtein(compactLeft, compactRight) <= 2
}

func levenshtein(left string, right string) int {
	lr := []rune(left)
	rr := []rune(right)

	prev := make([]int, len(rr)+1)
	curr := make([]int, len(rr)+1)
	for j := 0; j <= len(rr); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(lr); i++ {
		curr[0] = i
		for j := 1; j <= len(rr); j++ {
			cost := 1
			if lr[i-1] == rr[j-1] {
				cost = 0
			}
			curr[j] = min(min(prev[j]+1, curr[j-1]+1), prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rr)]
}
