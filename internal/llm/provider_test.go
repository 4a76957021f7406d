package llm

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		maxTags int
		want    []string
	}{
		{
			name: "comma separated",
			raw:  "bioprocess, fermentation, equipment",
			want: []string{"bioprocess", "fermentation", "equipment"},
		},
		{
			name: "bullet list fallback",
			raw:  "- Bioprocess\n- Fermentation\n",
			want: []string{"bioprocess", "fermentation"},
		},
		{
			name: "dedupes and lowercases",
			raw:  "Valves, valves, VALVES, piping",
			want: []string{"valves", "piping"},
		},
		{
			name:    "caps at max",
			raw:     "a1, b2, c3, d4",
			maxTags: 2,
			want:    []string{"a1", "b2"},
		},
		{
			name: "drops oversized tags",
			raw:  strings.Repeat("x", 41) + ", piping",
			want: []string{"piping"},
		},
		{
			name: "empty response",
			raw:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTags(tt.raw, tt.maxTags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseTags(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(TagRequest{
		Term:       "Safety Valve",
		Language:   "en",
		Definition: "A valve that relieves excess pressure.",
		MaxTags:    3,
	})

	for _, want := range []string{"Safety Valve", "en", "relieves excess pressure", "up to 3"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestNewProvider(t *testing.T) {
	if p, err := NewProvider(Config{Provider: ""}); err != nil || p != nil {
		t.Errorf("disabled config: got (%v, %v), want (nil, nil)", p, err)
	}
	if _, err := NewProvider(Config{Provider: "carrier-pigeon"}); err == nil {
		t.Error("unknown provider accepted")
	}
	if _, err := NewProvider(Config{Provider: "openai"}); err == nil {
		t.Error("openai without API key accepted")
	}
	if p, err := NewProvider(Config{Provider: "ollama", Model: "llama3.1:8b"}); err != nil || p == nil {
		t.Errorf("ollama config rejected: %v", err)
	}
}
