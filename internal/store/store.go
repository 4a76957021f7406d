// Package store persists glossary entries and relationship edges.
//
// Two backends exist: an in-memory store for tests and small corpora,
// and a SQLite store for durable persistence. Both enforce the entry
// invariants (one entry per (term, language), at least one definition,
// exactly one primary) through the same mutation paths.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lexigraph/lexigraph/internal/model"
)

// Sentinel errors shared by all backends.
var (
	// ErrNotFound indicates the requested entry does not exist.
	ErrNotFound = errors.New("entry not found")

	// ErrConflict indicates an entry already exists for the
	// (term, language) key. Aggregation retries against it.
	ErrConflict = errors.New("entry already exists")

	// ErrNoRun indicates an unknown inference run ID.
	ErrNoRun = errors.New("inference run not found")
)

// EntryStore is the persistence contract for glossary entries. Create
// must be atomic per (term, language): under concurrent creation exactly
// one caller succeeds and the rest observe ErrConflict.
type EntryStore interface {
	// Get returns the entry for (term, language), or ErrNotFound.
	Get(ctx context.Context, term, language string) (*model.GlossaryEntry, error)

	// Create persists a new entry. The entry must carry at least one
	// definition; the first becomes primary regardless of input flags.
	Create(ctx context.Context, entry *model.GlossaryEntry) error

	// AppendDefinition adds a definition to an existing entry. It
	// reports false when the entry already has a definition with the
	// same text and source document (idempotent re-import). The
	// definition becomes primary only when the entry has none.
	AppendDefinition(ctx context.Context, entryID string, def model.Definition) (bool, error)

	// RemoveDefinition deletes a definition by position. Removing the
	// primary promotes the oldest remaining definition.
	RemoveDefinition(ctx context.Context, entryID string, index int) error

	// SetStatus updates the entry's validation status.
	SetStatus(ctx context.Context, entryID string, status model.ValidationStatus) error

	// SetDomainTags replaces the entry's domain tag set.
	SetDomainTags(ctx context.Context, entryID string, tags []string) error

	// List returns all entries for a language, or all entries when
	// language is empty.
	List(ctx context.Context, language string) ([]model.GlossaryEntry, error)
}

// GraphStore is the upsert-edge contract for the knowledge graph.
// Edges are keyed by (from, to, type); committing a run twice, or
// committing a re-run over unchanged entries, must not duplicate edges
// or drift confidence.
type GraphStore interface {
	// StageEdges buffers edges under a run ID without publishing them.
	StageEdges(ctx context.Context, runID string, edges []model.RelationshipEdge) error

	// SaveCheckpoint records batch progress so a restarted run can
	// resume after the last completed chunk.
	SaveCheckpoint(ctx context.Context, runID string, chunk int) error

	// Checkpoint returns the last saved chunk for a run, -1 when the
	// run has no checkpoint yet.
	Checkpoint(ctx context.Context, runID string) (int, error)

	// CommitRun atomically upserts all staged edges and drops the
	// staging state. Returns the number of edges upserted.
	CommitRun(ctx context.Context, runID string) (int, error)

	// DiscardRun drops a run's staged edges, leaving committed edges
	// from prior runs untouched.
	DiscardRun(ctx context.Context, runID string) error

	// Edges returns all committed edges.
	Edges(ctx context.Context) ([]model.RelationshipEdge, error)
}

// prepareNew normalizes a caller-supplied entry before its first write:
// ID, timestamps, status default, and the primary-definition invariant.
// Both backends create entries only through this path.
func prepareNew(entry *model.GlossaryEntry) error {
	if entry.CanonicalTerm == "" || entry.Language == "" {
		return fmt.Errorf("entry requires term and language")
	}
	if len(entry.Definitions) == 0 {
		return fmt.Errorf("entry %q requires at least one definition", entry.CanonicalTerm)
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	if entry.Status == "" {
		entry.Status = model.StatusPending
	}

	for i := range entry.Definitions {
		entry.Definitions[i].IsPrimary = i == 0
		if entry.Definitions[i].CreatedAt.IsZero() {
			entry.Definitions[i].CreatedAt = now
		}
	}
	return nil
}
