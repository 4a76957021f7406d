package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lexigraph/lexigraph/internal/metric"
	"github.com/lexigraph/lexigraph/internal/model"
	"github.com/lexigraph/lexigraph/internal/source"
	"github.com/lexigraph/lexigraph/internal/store"
)

func testDoc() *model.Document {
	return &model.Document{
		ID:       "docs/manual.txt",
		Language: "en",
		Pages: []model.Page{
			{Number: 1, Text: "The Safety Valve protects the vessel. A Safety Valve must open at the set pressure."},
			{Number: 2, Text: "Operators inspect the Safety Valve monthly. SCADA monitors the line. SCADA logs pressure."},
		},
	}
}

func TestIngestDocument(t *testing.T) {
	mem := store.NewMemory()
	p := New(model.DefaultConfig(), mem, source.NewReader("en"))

	result, err := p.IngestDocument(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if result.Skipped {
		t.Error("first ingest reported skipped")
	}
	if result.Accepted != 2 {
		t.Errorf("accepted = %d, want 2 (Safety Valve, SCADA): %+v", result.Accepted, result)
	}
	if result.Rejected == 0 {
		t.Error("expected low-frequency candidates to be rejected")
	}
	if result.EntriesCreated != 2 {
		t.Errorf("entries created = %d, want 2", result.EntriesCreated)
	}

	entry, err := mem.Get(context.Background(), "safety valve", "en")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	def, ok := entry.PrimaryDefinition()
	if !ok {
		t.Fatal("entry has no primary definition")
	}
	if !strings.Contains(def.Text, "protects the vessel") {
		t.Errorf("primary definition = %q, want first context sentence", def.Text)
	}
	if def.SourceDocID != "docs/manual.txt" {
		t.Errorf("definition source = %q", def.SourceDocID)
	}

	if got := p.Counters().Get(metric.KeyDocuments); got != 1 {
		t.Errorf("documents counter = %d, want 1", got)
	}
}

func TestIngestSkipsUnchangedDocument(t *testing.T) {
	mem := store.NewMemory()
	p := New(model.DefaultConfig(), mem, source.NewReader("en"))
	ctx := context.Background()

	if _, err := p.IngestDocument(ctx, testDoc()); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	second, err := p.IngestDocument(ctx, testDoc())
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if !second.Skipped {
		t.Error("unchanged document not skipped")
	}
	if second.Candidates != 0 {
		t.Errorf("skipped ingest still extracted %d candidates", second.Candidates)
	}

	changed := testDoc()
	changed.Pages[1].Text += " The Safety Valve seat needs replacement."
	third, err := p.IngestDocument(ctx, changed)
	if err != nil {
		t.Fatalf("third ingest: %v", err)
	}
	if third.Skipped {
		t.Error("changed document was skipped")
	}
}

func TestReingestIsIdempotent(t *testing.T) {
	mem := store.NewMemory()
	p := New(model.DefaultConfig(), mem, source.NewReader("en"))
	ctx := context.Background()

	if _, err := p.IngestDocument(ctx, testDoc()); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	before, _ := mem.Get(ctx, "safety valve", "en")

	// Defeat the skip cache the way a fresh process would.
	p2 := New(model.DefaultConfig(), mem, source.NewReader("en"))
	result, err := p2.IngestDocument(ctx, testDoc())
	if err != nil {
		t.Fatalf("re-ingest: %v", err)
	}
	if result.EntriesCreated != 0 {
		t.Errorf("re-ingest created %d entries", result.EntriesCreated)
	}
	if result.DefinitionsAdded != 0 {
		t.Errorf("re-ingest added %d duplicate definitions", result.DefinitionsAdded)
	}

	after, _ := mem.Get(ctx, "safety valve", "en")
	if len(after.Definitions) != len(before.Definitions) {
		t.Errorf("definitions grew from %d to %d on re-ingest",
			len(before.Definitions), len(after.Definitions))
	}
}

func TestIngestPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manual.txt")
	content := "The Safety Valve protects the vessel. The Safety Valve opens at the set pressure."
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	mem := store.NewMemory()
	p := New(model.DefaultConfig(), mem, source.NewReader("en"))

	result, err := p.IngestPath(context.Background(), path)
	if err != nil {
		t.Fatalf("ingest path: %v", err)
	}
	if result.EntriesCreated != 1 {
		t.Errorf("entries created = %d, want 1", result.EntriesCreated)
	}

	if _, err := p.IngestPath(context.Background(), filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("missing file did not error")
	}
	if got := p.Counters().Get(metric.KeyDocumentsError); got != 1 {
		t.Errorf("failed-documents counter = %d, want 1", got)
	}
}

func TestIngestUnsupportedLanguageStrategy(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Extraction.Strategy = "linguistic" // dictionary only covers ja

	p := New(cfg, store.NewMemory(), source.NewReader("en"))
	if _, err := p.IngestDocument(context.Background(), testDoc()); err == nil {
		t.Error("linguistic strategy for unsupported language did not error")
	}
}

func TestIngestAppliesSuggestedTags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model":    "llama3.1:8b",
			"response": "pressure relief, safety",
			"done":     true,
		})
	}))
	defer server.Close()

	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "ollama"
	cfg.LLM.BaseURL = server.URL
	cfg.LLM.Model = "llama3.1:8b"

	mem := store.NewMemory()
	p := New(cfg, mem, source.NewReader("en"))

	result, err := p.IngestDocument(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	entry, err := mem.Get(context.Background(), "safety valve", "en")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if len(entry.DomainTags) != 2 {
		t.Errorf("domain tags = %v, want suggestions applied", entry.DomainTags)
	}
}

func TestTaggerFailureIsWarningOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "ollama"
	cfg.LLM.BaseURL = server.URL
	cfg.LLM.Model = "llama3.1:8b"

	mem := store.NewMemory()
	p := New(cfg, mem, source.NewReader("en"))

	result, err := p.IngestDocument(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("ingest failed because of the tagger: %v", err)
	}
	if len(result.Warnings) == 0 {
		t.Error("tagger failure produced no warning")
	}
	if result.EntriesCreated != 2 {
		t.Errorf("entries created = %d, want ingestion unaffected", result.EntriesCreated)
	}
}
