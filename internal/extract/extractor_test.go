package extract

import (
	"testing"

	"github.com/lexigraph/lexigraph/internal/model"
)

func testConfig() model.ExtractionConfig {
	return model.ExtractionConfig{
		Strategy:      "pattern",
		MinTermLength: 4,
		MaxTermLength: 64,
		MinFrequency:  2,
	}
}

func TestExtractor_Document_DedupesAndCounts(t *testing.T) {
	ex, err := New(testConfig(), "en")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	doc := model.Document{
		ID:       "doc-1",
		Language: "en",
		Pages: []model.Page{
			{Number: 1, Text: "The Safety Valve opens. The Safety Valve closes under pressure."},
			{Number: 2, Text: "Inspect the Safety Valve yearly."},
		},
	}

	candidates := ex.Document(doc)

	var sv *model.TermCandidate
	for i := range candidates {
		if candidates[i].NormalizedForm == "safety valve" {
			sv = &candidates[i]
		}
	}
	if sv == nil {
		t.Fatalf("expected candidate 'safety valve', got %+v", candidates)
	}

	if sv.Frequency != 3 {
		t.Errorf("Frequency = %d, want 3", sv.Frequency)
	}
	if sv.LowConfidence {
		t.Error("frequency 3 should not be flagged low-confidence")
	}
	if len(sv.Locations) != 2 {
		t.Fatalf("Locations = %d, want first and last only", len(sv.Locations))
	}
	if sv.Locations[0].Page != 1 || sv.Locations[1].Page != 2 {
		t.Errorf("locations = %+v, want first on page 1, last on page 2", sv.Locations)
	}
	if sv.Method != model.MethodPattern {
		t.Errorf("Method = %s, want pattern", sv.Method)
	}
	if sv.ContextSentence != "The Safety Valve opens." {
		t.Errorf("ContextSentence = %q", sv.ContextSentence)
	}
}

func TestExtractor_Document_LowConfidenceFlag(t *testing.T) {
	ex, err := New(testConfig(), "en")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	doc := model.Document{
		ID:       "doc-2",
		Language: "en",
		Pages:    []model.Page{{Number: 1, Text: "The Bioreactor is sealed."}},
	}

	candidates := ex.Document(doc)

	for _, c := range candidates {
		if c.NormalizedForm == "bioreactor" {
			if !c.LowConfidence {
				t.Error("single occurrence should be flagged low-confidence, not dropped")
			}
			return
		}
	}
	t.Fatalf("expected candidate 'bioreactor', got %+v", candidates)
}

func TestExtractor_Document_EmptyInput(t *testing.T) {
	ex, err := New(testConfig(), "en")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	candidates := ex.Document(model.Document{ID: "doc-3", Language: "en"})
	if len(candidates) != 0 {
		t.Errorf("empty document should yield no candidates, got %d", len(candidates))
	}
}

func TestExtractor_PostFilters(t *testing.T) {
	ex, err := New(testConfig(), "en")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		text string
		keep bool
		desc string
	}{
		{"Safety Valve", true, "normal phrase"},
		{"Ion", false, "below min length"},
		{"tion", false, "lowercase fragment start"},
		{"1234", false, "purely numeric"},
		{"A@#$%^", false, "symbol-heavy"},
		{"PLC4", true, "acronym with digit"},
	}

	for _, tt := range tests {
		if got := ex.keep(tt.text); got != tt.keep {
			t.Errorf("keep(%q) = %v, want %v (%s)", tt.text, got, tt.keep, tt.desc)
		}
	}
}

func TestSentenceAround(t *testing.T) {
	text := "First sentence. The Safety Valve opens here. Last sentence."
	got := sentenceAround(text, 20) // inside "Safety Valve"
	want := "The Safety Valve opens here."
	if got != want {
		t.Errorf("sentenceAround = %q, want %q", got, want)
	}
}
