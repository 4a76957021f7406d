package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestOllamaSuggestTags(t *testing.T) {
	var gotReq ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:     "llama3.1:8b",
			Response:  "bioprocess, fermentation",
			Done:      true,
			EvalCount: 12,
		})
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1:8b"})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	resp, err := p.SuggestTags(context.Background(), TagRequest{
		Term:     "Bioreactor",
		Language: "en",
	})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}

	if want := []string{"bioprocess", "fermentation"}; !reflect.DeepEqual(resp.Tags, want) {
		t.Errorf("tags = %v, want %v", resp.Tags, want)
	}
	if resp.Model != "llama3.1:8b" {
		t.Errorf("model = %q", resp.Model)
	}
	if gotReq.Stream {
		t.Error("request asked for streaming")
	}
	if gotReq.Model != "llama3.1:8b" {
		t.Errorf("request model = %q", gotReq.Model)
	}
}

func TestOllamaSuggestTagsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ollamaError{Error: "model not found"})
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "missing"})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	if _, err := p.SuggestTags(context.Background(), TagRequest{Term: "Valve"}); err == nil {
		t.Error("expected error from API failure")
	}
}

func TestOllamaRequiresModel(t *testing.T) {
	p, err := NewOllamaProvider(Config{})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if _, err := p.SuggestTags(context.Background(), TagRequest{Term: "Valve"}); err == nil {
		t.Error("expected error without a model name")
	}
}

func TestOllamaIsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p, _ := NewOllamaProvider(Config{BaseURL: server.URL})
	if !p.IsAvailable(context.Background()) {
		t.Error("running server reported unavailable")
	}

	server.Close()
	if p.IsAvailable(context.Background()) {
		t.Error("stopped server reported available")
	}
}
