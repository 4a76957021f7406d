package aggregate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lexigraph/lexigraph/internal/model"
	"github.com/lexigraph/lexigraph/internal/store"
)

func init() {
	// No retry sleeps in tests.
	sleepFunc = func(d time.Duration) {}
}

func acceptedCandidate(term, docID, context string) model.TermCandidate {
	return model.TermCandidate{
		Text:            term,
		NormalizedForm:  term,
		Language:        "en",
		Frequency:       3,
		Method:          model.MethodPattern,
		ContextSentence: context,
		Locations: []model.SourceLocation{
			{DocID: docID, Page: 1, Span: [2]int{0, len(term)}},
		},
	}
}

func TestRecord_CreatesThenAppends(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	agg := New(mem)

	res, err := agg.Record(ctx, acceptedCandidate("reactor", "doc-1", "A reactor is a vessel."))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !res.Created || !res.Added {
		t.Errorf("first Record = %+v, want created+added", res)
	}

	res, err = agg.Record(ctx, acceptedCandidate("reactor", "doc-2", "The reactor holds the culture."))
	if err != nil {
		t.Fatalf("second Record: %v", err)
	}
	if res.Created || !res.Added {
		t.Errorf("second Record = %+v, want appended", res)
	}

	entry, err := mem.Get(ctx, "reactor", "en")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(entry.Definitions) != 2 {
		t.Fatalf("definitions = %d, want 2", len(entry.Definitions))
	}

	primary, ok := entry.PrimaryDefinition()
	if !ok {
		t.Fatal("entry has no primary definition")
	}
	if primary.Text != "A reactor is a vessel." {
		t.Errorf("primary = %q, want the first definition ever added", primary.Text)
	}
	if primary.SourceDocID != "doc-1" {
		t.Errorf("primary source = %q, want doc-1", primary.SourceDocID)
	}
}

func TestRecord_ReimportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	agg := New(mem)

	cand := acceptedCandidate("valve", "doc-1", "A valve controls flow.")

	if _, err := agg.Record(ctx, cand); err != nil {
		t.Fatalf("Record: %v", err)
	}

	// Re-ingesting the identical document adds nothing.
	res, err := agg.Record(ctx, cand)
	if err != nil {
		t.Fatalf("re-Record: %v", err)
	}
	if res.Added {
		t.Error("duplicate text+source should not be re-appended")
	}

	entry, _ := mem.Get(ctx, "valve", "en")
	if len(entry.Definitions) != 1 {
		t.Errorf("definitions = %d, want 1 after re-import", len(entry.Definitions))
	}
}

func TestRecord_ConcurrentImportsConverge(t *testing.T) {
	// Two concurrent imports both introduce "pump": exactly one entry,
	// the loser's write lands as an appended definition.
	ctx := context.Background()
	mem := store.NewMemory()
	agg := New(mem)

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	for _, doc := range []string{"doc-1", "doc-2"} {
		wg.Add(1)
		go func(docID string) {
			defer wg.Done()
			_, err := agg.Record(ctx, acceptedCandidate("pump", docID, "Definition from "+docID))
			errs <- err
		}(doc)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := mem.List(ctx, "en")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want exactly one for pump", len(entries))
	}
	if len(entries[0].Definitions) != 2 {
		t.Errorf("definitions = %d, want both documents represented", len(entries[0].Definitions))
	}

	primaries := 0
	for _, d := range entries[0].Definitions {
		if d.IsPrimary {
			primaries++
		}
	}
	if primaries != 1 {
		t.Errorf("primaries = %d, want exactly 1", primaries)
	}
}

func TestRecord_FallsBackToTermWhenNoContext(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	agg := New(mem)

	cand := acceptedCandidate("rotor", "doc-1", "")
	if _, err := agg.Record(ctx, cand); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entry, _ := mem.Get(ctx, "rotor", "en")
	if entry.Definitions[0].Text != "rotor" {
		t.Errorf("definition text = %q", entry.Definitions[0].Text)
	}
}

func TestRecord_MalformedCandidate(t *testing.T) {
	agg := New(store.NewMemory())
	if _, err := agg.Record(context.Background(), model.TermCandidate{}); err == nil {
		t.Error("expected error for candidate without term/language")
	}
}
