package source

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadFilePlainText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "manual.txt", "Page one text.\fPage two text.")

	doc, err := NewReader("en").ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if doc.ID != filepath.Clean(path) {
		t.Errorf("doc ID = %q, want cleaned path", doc.ID)
	}
	if doc.Language != "en" {
		t.Errorf("language = %q", doc.Language)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(doc.Pages))
	}
	if doc.Pages[0].Number != 1 || doc.Pages[1].Number != 2 {
		t.Errorf("page numbers = %d, %d", doc.Pages[0].Number, doc.Pages[1].Number)
	}
	if doc.Pages[1].Text != "Page two text." {
		t.Errorf("page 2 text = %q", doc.Pages[1].Text)
	}
}

func TestReadFileSinglePage(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.md", "No page breaks here.")

	doc, err := NewReader("en").ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Errorf("got %d pages, want 1", len(doc.Pages))
	}
}

func TestReadFileHTML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "spec.html", `<html><head>
		<script>var x = "Hidden Script Text";</script>
		<style>.a { color: red }</style>
	</head><body>
		<h1>Safety Valve</h1>
		<p>A Safety Valve relieves excess pressure.</p>
	</body></html>`)

	doc, err := NewReader("en").ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := doc.Pages[0].Text
	if !strings.Contains(text, "Safety Valve relieves excess pressure") {
		t.Errorf("visible text missing body content: %q", text)
	}
	if strings.Contains(text, "Hidden Script Text") || strings.Contains(text, "color: red") {
		t.Errorf("visible text leaked script/style content: %q", text)
	}
}

func TestReadFileUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scan.pdf", "%PDF-1.4")

	if _, err := NewReader("en").ReadFile(path); err == nil {
		t.Error("expected error for unsupported file type")
	}
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "a.txt", "x")
	html := writeFile(t, dir, "b.html", "<p>x</p>")
	writeFile(t, dir, "skip.bin", "x")

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	nested := writeFile(t, sub, "c.md", "x")

	files, err := Collect([]string{dir, txt}, false) // txt listed twice via dir + explicit
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	want := []string{txt, html, nested}
	if len(files) != len(want) {
		t.Fatalf("got %d files %v, want %d", len(files), files, len(want))
	}
	for _, w := range want {
		found := false
		for _, f := range files {
			if f == filepath.Clean(w) {
				found = true
			}
		}
		if !found {
			t.Errorf("missing %s in %v", w, files)
		}
	}
}

func TestCollectExplicitUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scan.pdf", "x")
	if _, err := Collect([]string{path}, false); err == nil {
		t.Error("explicitly named unsupported file accepted")
	}

	files, err := Collect([]string{path}, true)
	if err != nil || len(files) != 1 {
		t.Errorf("includeAll rejected %s: %v", path, err)
	}
}

func TestClientExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/extract" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte("Extracted page one.\fExtracted page two."))
	}))
	defer server.Close()

	dir := t.TempDir()
	path := writeFile(t, dir, "scan.pdf", "%PDF-1.4 fake content")

	client := NewClient(server.URL, "en", 5*time.Second, nil, 0)
	doc, err := client.ReadFile(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(doc.Pages))
	}
	if doc.Pages[0].Text != "Extracted page one." {
		t.Errorf("page 1 = %q", doc.Pages[0].Text)
	}
}

func TestClientExtractFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	dir := t.TempDir()
	path := writeFile(t, dir, "scan.pdf", "x")

	client := NewClient(server.URL, "en", time.Second, nil, 0)
	if _, err := client.ReadFile(path); err == nil {
		t.Error("expected error from failing service")
	}
}
