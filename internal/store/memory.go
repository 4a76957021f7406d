package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lexigraph/lexigraph/internal/model"
)

// Memory is an in-memory store implementing both EntryStore and
// GraphStore. It backs tests and small one-shot runs.
type Memory struct {
	mu sync.Mutex

	entries map[string]*model.GlossaryEntry // key: language + "\x00" + term
	byID    map[string]*model.GlossaryEntry

	edges  map[model.EdgeKey]model.RelationshipEdge
	staged map[string][]model.RelationshipEdge
	chkpts map[string]int
}

var (
	_ EntryStore = (*Memory)(nil)
	_ GraphStore = (*Memory)(nil)
)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*model.GlossaryEntry),
		byID:    make(map[string]*model.GlossaryEntry),
		edges:   make(map[model.EdgeKey]model.RelationshipEdge),
		staged:  make(map[string][]model.RelationshipEdge),
		chkpts:  make(map[string]int),
	}
}

func entryKey(term, language string) string {
	return language + "\x00" + term
}

// Get returns a copy of the entry for (term, language).
func (m *Memory) Get(ctx context.Context, term, language string) (*model.GlossaryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[entryKey(term, language)]
	if !ok {
		return nil, ErrNotFound
	}
	return copyEntry(entry), nil
}

// Create inserts a new entry; the map lookup under the lock is the
// compare-and-set that serializes concurrent creation.
func (m *Memory) Create(ctx context.Context, entry *model.GlossaryEntry) error {
	if err := prepareNew(entry); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := entryKey(entry.CanonicalTerm, entry.Language)
	if _, exists := m.entries[key]; exists {
		return ErrConflict
	}

	stored := copyEntry(entry)
	m.entries[key] = stored
	m.byID[stored.ID] = stored
	return nil
}

// AppendDefinition adds a definition unless the same text+source pair
// is already present.
func (m *Memory) AppendDefinition(ctx context.Context, entryID string, def model.Definition) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.byID[entryID]
	if !ok {
		return false, ErrNotFound
	}

	if entry.HasDefinition(def.Text, def.SourceDocID) {
		return false, nil
	}

	def.IsPrimary = len(entry.Definitions) == 0
	if def.CreatedAt.IsZero() {
		def.CreatedAt = time.Now().UTC()
	}
	entry.Definitions = append(entry.Definitions, def)
	entry.UpdatedAt = time.Now().UTC()
	return true, nil
}

// RemoveDefinition deletes by position, promoting the oldest remaining
// definition when the primary goes away.
func (m *Memory) RemoveDefinition(ctx context.Context, entryID string, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.byID[entryID]
	if !ok {
		return ErrNotFound
	}
	if index < 0 || index >= len(entry.Definitions) {
		return ErrNotFound
	}

	wasPrimary := entry.Definitions[index].IsPrimary
	entry.Definitions = append(entry.Definitions[:index], entry.Definitions[index+1:]...)
	if wasPrimary && len(entry.Definitions) > 0 {
		entry.Definitions[0].IsPrimary = true
	}
	entry.UpdatedAt = time.Now().UTC()
	return nil
}

// SetStatus updates validation status.
func (m *Memory) SetStatus(ctx context.Context, entryID string, status model.ValidationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.byID[entryID]
	if !ok {
		return ErrNotFound
	}
	entry.Status = status
	entry.UpdatedAt = time.Now().UTC()
	return nil
}

// SetDomainTags replaces the tag set.
func (m *Memory) SetDomainTags(ctx context.Context, entryID string, tags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.byID[entryID]
	if !ok {
		return ErrNotFound
	}
	entry.DomainTags = append([]string(nil), tags...)
	entry.UpdatedAt = time.Now().UTC()
	return nil
}

// List returns entries for a language sorted by term for stable output.
func (m *Memory) List(ctx context.Context, language string) ([]model.GlossaryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.GlossaryEntry
	for _, entry := range m.entries {
		if language != "" && entry.Language != language {
			continue
		}
		out = append(out, *copyEntry(entry))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CanonicalTerm < out[j].CanonicalTerm })
	return out, nil
}

// StageEdges buffers edges for a run.
func (m *Memory) StageEdges(ctx context.Context, runID string, edges []model.RelationshipEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.staged[runID] = append(m.staged[runID], edges...)
	if _, ok := m.chkpts[runID]; !ok {
		m.chkpts[runID] = -1
	}
	return nil
}

// SaveCheckpoint records chunk progress for a run.
func (m *Memory) SaveCheckpoint(ctx context.Context, runID string, chunk int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chkpts[runID] = chunk
	return nil
}

// Checkpoint returns the last completed chunk, -1 if none.
func (m *Memory) Checkpoint(ctx context.Context, runID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chunk, ok := m.chkpts[runID]
	if !ok {
		return -1, nil
	}
	return chunk, nil
}

// CommitRun upserts all staged edges atomically.
func (m *Memory) CommitRun(ctx context.Context, runID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged, ok := m.staged[runID]
	if !ok {
		return 0, ErrNoRun
	}

	for _, edge := range staged {
		m.edges[edge.Key()] = edge
	}
	delete(m.staged, runID)
	delete(m.chkpts, runID)
	return len(staged), nil
}

// DiscardRun drops staged edges; committed edges stay.
func (m *Memory) DiscardRun(ctx context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.staged, runID)
	delete(m.chkpts, runID)
	return nil
}

// Edges returns committed edges in a stable order.
func (m *Memory) Edges(ctx context.Context) ([]model.RelationshipEdge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.RelationshipEdge, 0, len(m.edges))
	for _, e := range m.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.FromTermID != b.FromTermID {
			return a.FromTermID < b.FromTermID
		}
		if a.ToTermID != b.ToTermID {
			return a.ToTermID < b.ToTermID
		}
		return a.Type < b.Type
	})
	return out, nil
}

func copyEntry(e *model.GlossaryEntry) *model.GlossaryEntry {
	cp := *e
	cp.Definitions = append([]model.Definition(nil), e.Definitions...)
	cp.DomainTags = append([]string(nil), e.DomainTags...)
	return &cp
}
