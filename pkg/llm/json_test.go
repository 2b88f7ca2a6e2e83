package llm

import (
	"testing"
)

type flexiblePayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestUnmarshalFlexible(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  flexiblePayload
	}{
		{
			name:  "clean json",
			input: `{"name": "a", "count": 2}`,
			want:  flexiblePayload{Name: "a", Count: 2},
		},
		{
			name:  "double encoded",
			input: `"{\"name\": \"a\", \"count\": 2}"`,
			want:  flexiblePayload{Name: "a", Count: 2},
		},
		{
			name:  "trailing comma repaired",
			input: `{"name": "a", "count": 2,}`,
			want:  flexiblePayload{Name: "a", Count: 2},
		},
		{
			name:  "single quotes repaired",
			input: `{'name': 'a', 'count': 2}`,
			want:  flexiblePayload{Name: "a", Count: 2},
		},
		{
			name:  "surrounding whitespace",
			input: "\n  {\"name\": \"a\", \"count\": 2}  \n",
			want:  flexiblePayload{Name: "a", Count: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got flexiblePayload
			if err := UnmarshalFlexible(tt.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible failed: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUnmarshalFlexibleUnrecoverable(t *testing.T) {
	var got flexiblePayload
	if err := UnmarshalFlexible("no json here at all", &got); err == nil {
		t.Fatal("expected error for unrecoverable input")
	}
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(flexiblePayload{})
	if schema == nil {
		t.Fatal("expected schema, got nil")
	}
	// Pointer input should yield the same schema as a value.
	if GenerateSchema(&flexiblePayload{}) == nil {
		t.Fatal("expected schema for pointer input")
	}
}
