// Package aggregate merges accepted candidates across documents into
// glossary entries with ordered, sourced definitions.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lexigraph/lexigraph/internal/model"
	"github.com/lexigraph/lexigraph/internal/store"
)

// createMaxRetries bounds the create-then-append race: when two imports
// introduce the same term concurrently, the loser retries against the
// winner's entry.
const createMaxRetries = 3

// sleepFunc is the delay between retries (injectable for tests).
var sleepFunc = time.Sleep

// Aggregator funnels every definition write through one mutation path,
// which is what keeps the primary-definition invariant intact.
type Aggregator struct {
	entries store.EntryStore
}

// New creates an aggregator over the given entry store.
func New(entries store.EntryStore) *Aggregator {
	return &Aggregator{entries: entries}
}

// Result reports what one Record call did.
type Result struct {
	EntryID string
	Created bool // new entry vs. definition appended to an existing one
	Added   bool // false when the definition was a duplicate
}

// Record merges one accepted candidate into the glossary: create the
// (term, language) entry if absent, else append a sourced definition.
// Safe to call concurrently for the same term from separate documents.
func (a *Aggregator) Record(ctx context.Context, cand model.TermCandidate) (*Result, error) {
	if cand.NormalizedForm == "" || cand.Language == "" {
		return nil, fmt.Errorf("candidate missing term or language")
	}

	def := model.Definition{
		Text:        cand.ContextSentence,
		SourceDocID: cand.FirstLocation().DocID,
	}
	if def.Text == "" {
		def.Text = cand.Text
	}

	for attempt := 0; attempt < createMaxRetries; attempt++ {
		entry, err := a.entries.Get(ctx, cand.NormalizedForm, cand.Language)
		if err == nil {
			return a.append(ctx, entry, def)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("lookup entry: %w", err)
		}

		err = a.entries.Create(ctx, &model.GlossaryEntry{
			CanonicalTerm: cand.NormalizedForm,
			Language:      cand.Language,
			Definitions:   []model.Definition{def},
		})
		if err == nil {
			created, getErr := a.entries.Get(ctx, cand.NormalizedForm, cand.Language)
			if getErr != nil {
				return nil, fmt.Errorf("reload created entry: %w", getErr)
			}
			return &Result{EntryID: created.ID, Created: true, Added: true}, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("create entry: %w", err)
		}

		// Another import created the entry first; append to it.
		if attempt < createMaxRetries-1 {
			sleepFunc(time.Duration(attempt+1) * 10 * time.Millisecond)
		}
	}

	return nil, fmt.Errorf("record %q: persistent conflict after %d attempts",
		cand.NormalizedForm, createMaxRetries)
}

func (a *Aggregator) append(ctx context.Context, entry *model.GlossaryEntry, def model.Definition) (*Result, error) {
	added, err := a.entries.AppendDefinition(ctx, entry.ID, def)
	if err != nil {
		return nil, fmt.Errorf("append definition: %w", err)
	}
	return &Result{EntryID: entry.ID, Created: false, Added: added}, nil
}
