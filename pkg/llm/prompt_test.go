package llm

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		name      string
		template  string
		variables map[string]any
		want      string
	}{
		{
			name:      "empty template",
			template:  "",
			variables: map[string]any{"name": "x"},
			want:      "",
		},
		{
			name:      "no variables",
			template:  "Hello {name}",
			variables: nil,
			want:      "Hello {name}",
		},
		{
			name:      "simple substitution",
			template:  "Hello {name}",
			variables: map[string]any{"name": "world"},
			want:      "Hello world",
		},
		{
			name:      "repeated placeholder",
			template:  "{name} and {name}",
			variables: map[string]any{"name": "x"},
			want:      "x and x",
		},
		{
			name:      "integer value",
			template:  "page {page} of {total}",
			variables: map[string]any{"page": 2, "total": 10},
			want:      "page 2 of 10",
		},
		{
			name:      "unmatched placeholder untouched",
			template:  "known {a}, unknown {b}",
			variables: map[string]any{"a": "yes"},
			want:      "known yes, unknown {b}",
		},
		{
			name:      "nil value untouched",
			template:  "{a}",
			variables: map[string]any{"a": nil},
			want:      "{a}",
		},
		{
			name:      "braces without identifier untouched",
			template:  "json {\"k\": 1} and {1bad}",
			variables: map[string]any{"k": "x"},
			want:      "json {\"k\": 1} and {1bad}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.template, tt.variables)
			if got != tt.want {
				t.Fatalf("Format = %q, want %q", got, tt.want)
			}
		})
	}
}
