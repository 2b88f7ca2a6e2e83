package graph

import (
	"strings"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "   \t ", want: ""},
		{name: "lowercases", input: "Acme Corp", want: "acme corp"},
		{name: "collapses whitespace", input: "  Acme \t  Corp \n", want: "acme corp"},
		{name: "compatibility form", input: "Ａｃｍｅ", want: "acme"},
		{name: "keeps unicode letters", input: "Müller GmbH", want: "müller gmbh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeName(tt.input)
			if got != tt.want {
				t.Fatalf("normalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "already clean", input: "acme-corp", want: "acme-corp"},
		{name: "lowercases", input: "Acme-Corp", want: "acme-corp"},
		{name: "replaces invalid runs", input: "acme corp / inc.", want: "acme-corp-inc"},
		{name: "collapses hyphens", input: "acme---corp", want: "acme-corp"},
		{name: "trims hyphens", input: "--acme--", want: "acme"},
		{name: "only punctuation", input: "!!??", want: ""},
		{name: "caps length", input: strings.Repeat("a", 100), want: strings.Repeat("a", 80)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeIdentifier(tt.input)
			if got != tt.want {
				t.Fatalf("normalizeIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnsureIdentifier(t *testing.T) {
	if got := ensureIdentifier("Acme Corp", ""); got != "acme-corp" {
		t.Fatalf("expected id derived from candidate, got %q", got)
	}
	if got := ensureIdentifier("", "Acme Corp"); got != "acme-corp" {
		t.Fatalf("expected id derived from name, got %q", got)
	}

	generated := ensureIdentifier("", "")
	if !strings.HasPrefix(generated, "entity-") {
		t.Fatalf("expected generated id with entity- prefix, got %q", generated)
	}
	if generated == ensureIdentifier("", "") {
		t.Fatal("expected generated ids to be unique")
	}
}

func TestSanitizeRelationType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: "related"},
		{name: "only punctuation", input: " -- ", want: "related"},
		{name: "plain", input: "WORKS_AT", want: "WORKS_AT"},
		{name: "spaces", input: "works at", want: "works_at"},
		{name: "mixed punctuation", input: "is-part/of", want: "is_part_of"},
		{name: "surrounding junk", input: "  (related to)  ", want: "related_to"},
		{name: "unicode kept", input: "隶属于", want: "隶属于"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeRelationType(tt.input)
			if got != tt.want {
				t.Fatalf("sanitizeRelationType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSimilarNames(t *testing.T) {
	tests := []struct {
		name  string
		left  string
		right string
		want  bool
	}{
		{name: "exact", left: "acme corp", right: "acme corp", want: true},
		{name: "whitespace variant", left: normalizeName("Acme  Corp"), right: "acme corp", want: true},
		{name: "compact form", left: normalizeName("AcmeCorp"), right: "acme corp", want: true},
		{name: "one char typo", left: normalizeName("Acme Corpo"), right: "acme corp", want: true},
		{name: "containment", left: "acme", right: "acme corp", want: true},
		{name: "different company", left: normalizeName("Globex Inc"), right: "acme corp", want: false},
		{name: "empty left", left: "", right: "acme corp", want: false},
		{name: "empty right", left: "acme corp", right: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := similarNames(tt.left, tt.right)
			if got != tt.want {
				t.Fatalf("similarNames(%q, %q) = %v, want %v", tt.left, tt.right, got, tt.want)
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		left  string
		right string
		want  int
	}{
		{left: "", right: "", want: 0},
		{left: "abc", right: "", want: 3},
		{left: "", right: "abc", want: 3},
		{left: "kitten", right: "sitting", want: 3},
		{left: "acmecorp", right: "acmecorpo", want: 1},
		{left: "flaw", right: "lawn", want: 2},
	}

	for _, tt := range tests {
		got := levenshtein(tt.left, tt.right)
		if got != tt.want {
			t.Fatalf("levenshtein(%q, %q) = %d, want %d", tt.left, tt.right, got, tt.want)
		}
	}
}
