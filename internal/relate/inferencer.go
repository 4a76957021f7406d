// Package relate infers typed relationships between glossary entries.
//
// Inference is a batch pass over the persisted entry set: every candidate
// pair is scored against the synonym, related-term, and part-of
// heuristics, matching edges are staged under a run ID in checkpointed
// chunks, and the whole run is committed atomically at the end. A run
// that dies mid-way leaves no visible edges and can be resumed from its
// last checkpoint.
package relate

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/lexigraph/lexigraph/internal/metric"
	"github.com/lexigraph/lexigraph/internal/model"
	"github.com/lexigraph/lexigraph/internal/store"
)

// Inferencer runs relationship inference over a store's entries.
type Inferencer struct {
	entries  store.EntryStore
	graph    store.GraphStore
	cfg      model.RelationsConfig
	counters *metric.Counters
	exporter *metric.Exporter // nil unless metrics export is wired
}

// New returns an inferencer over the given stores.
func New(entries store.EntryStore, graph store.GraphStore, cfg model.RelationsConfig, counters *metric.Counters) *Inferencer {
	return &Inferencer{entries: entries, graph: graph, cfg: cfg, counters: counters}
}

// UseExporter mirrors committed edge counts into a Prometheus exporter.
func (inf *Inferencer) UseExporter(e *metric.Exporter) {
	inf.exporter = e
}

// Report summarizes one inference run.
type Report struct {
	RunID     string                     `json:"run_id"`
	Entries   int                        `json:"entries"`
	Pairs     int                        `json:"pairs"`
	Staged    int                        `json:"staged"`
	Committed int                        `json:"committed"`
	Resumed   bool                       `json:"resumed,omitempty"`
	ByType    map[model.RelationType]int `json:"by_type"`
}

// Run executes a fresh inference pass for a language (empty means all
// languages; cross-language pairs are never compared). The run commits
// atomically; on error the staged edges stay retryable under the
// returned report's RunID.
func (inf *Inferencer) Run(ctx context.Context, language string) (*Report, error) {
	return inf.run(ctx, language, uuid.NewString(), false)
}

// Resume continues an interrupted run from its last checkpoint. Pair
// ordering is deterministic for an unchanged entry set, so chunks
// completed before the interruption are skipped, not recomputed.
func (inf *Inferencer) Resume(ctx context.Context, language, runID string) (*Report, error) {
	if runID == "" {
		return nil, fmt.Errorf("resume requires a run id")
	}
	return inf.run(ctx, language, runID, true)
}

func (inf *Inferencer) run(ctx context.Context, language, runID string, resumed bool) (*Report, error) {
	entries, err := inf.listByLanguage(ctx, language)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	pairs := inf.pairs(entries)
	report := &Report{
		RunID:   runID,
		Entries: len(entries),
		Pairs:   len(pairs),
		Resumed: resumed,
		ByType:  make(map[model.RelationType]int),
	}

	if len(pairs) == 0 {
		return report, nil
	}

	startChunk := 0
	if resumed {
		last, err := inf.graph.Checkpoint(ctx, runID)
		if err != nil {
			return report, fmt.Errorf("load checkpoint for run %s: %w", runID, err)
		}
		startChunk = last + 1
	}

	chunkSize := inf.cfg.ChunkSize
	if chunkSize < 1 {
		chunkSize = 1
	}

	for chunk, off := startChunk, startChunk*chunkSize; off < len(pairs); chunk, off = chunk+1, off+chunkSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		end := off + chunkSize
		if end > len(pairs) {
			end = len(pairs)
		}

		var edges []model.RelationshipEdge
		for _, p := range pairs[off:end] {
			edges = append(edges, inf.compare(&entries[p[0]], &entries[p[1]])...)
		}

		// Empty chunks are staged too: staging registers the run, so a
		// pass that finds no edges still commits cleanly.
		if err := inf.graph.StageEdges(ctx, runID, edges); err != nil {
			return report, fmt.Errorf("stage chunk %d of run %s: %w", chunk, runID, err)
		}
		if err := inf.graph.SaveCheckpoint(ctx, runID, chunk); err != nil {
			return report, fmt.Errorf("checkpoint chunk %d of run %s: %w", chunk, runID, err)
		}

		report.Staged += len(edges)
		for _, e := range edges {
			report.ByType[e.Type]++
		}
	}

	committed, err := inf.graph.CommitRun(ctx, runID)
	if err != nil {
		return report, fmt.Errorf("commit run %s: %w", runID, err)
	}
	report.Committed = committed

	if inf.counters != nil {
		inf.counters.Add(metric.KeyEdgesCommitted, int64(committed))
	}
	if inf.exporter != nil {
		for t, n := range report.ByType {
			inf.exporter.ObserveEdges(string(t), n)
		}
	}
	return report, nil
}

// listByLanguage returns comparable entries in deterministic order.
// Rejected entries never participate in the graph.
func (inf *Inferencer) listByLanguage(ctx context.Context, language string) ([]model.GlossaryEntry, error) {
	all, err := inf.entries.List(ctx, language)
	if err != nil {
		return nil, err
	}

	kept := all[:0]
	for _, e := range all {
		if e.Status != model.StatusRejected {
			kept = append(kept, e)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Language != kept[j].Language {
			return kept[i].Language < kept[j].Language
		}
		return kept[i].CanonicalTerm < kept[j].CanonicalTerm
	})
	return kept, nil
}

// pairs enumerates candidate index pairs in deterministic order. With
// bucketing on, only pairs sharing a bucket key are compared; the keys
// are chosen so those are the only pairs any heuristic can match.
func (inf *Inferencer) pairs(entries []model.GlossaryEntry) [][2]int {
	var out [][2]int
	if !inf.cfg.Bucketing {
		for i := 0; i < len(entries); i++ {
			for j := i + 1; j < len(entries); j++ {
				if entries[i].Language == entries[j].Language {
					out = append(out, [2]int{i, j})
				}
			}
		}
		return out
	}

	buckets := make(map[string][]int)
	for i, e := range entries {
		for _, key := range bucketKeys(&e) {
			buckets[e.Language+"\x00"+key] = append(buckets[e.Language+"\x00"+key], i)
		}
	}

	seen := make(map[[2]int]bool)
	for _, members := range buckets {
		for x := 0; x < len(members); x++ {
			for y := x + 1; y < len(members); y++ {
				p := [2]int{members[x], members[y]}
				if p[0] > p[1] {
					p[0], p[1] = p[1], p[0]
				}
				seen[p] = true
			}
		}
	}

	out = make([][2]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a][0] != out[b][0] {
			return out[a][0] < out[b][0]
		}
		return out[a][1] < out[b][1]
	})
	return out
}

// bucketKeys covers every heuristic: tokens cover the part-of suffix
// rule (child and parent share the parent's last token), tags cover
// related-term overlap, and stripped-form trigrams cover synonym
// similarity (a nonzero Dice coefficient needs at least one common
// trigram, and the threshold is above zero).
func bucketKeys(e *model.GlossaryEntry) []string {
	keys := tokenFields(e.CanonicalTerm)
	for _, t := range e.DomainTags {
		keys = append(keys, "tag:"+t)
	}
	for g := range trigrams(stripForm(e.CanonicalTerm)) {
		keys = append(keys, "tri:"+g)
	}
	return keys
}

// compare applies all heuristics to one pair and returns the matching
// edges. Symmetric types are emitted once, from the lexicographically
// smaller canonical term, so re-runs land on the same upsert key.
func (inf *Inferencer) compare(a, b *model.GlossaryEntry) []model.RelationshipEdge {
	if a.ID == b.ID {
		return nil
	}

	lo, hi := a, b
	if hi.CanonicalTerm < lo.CanonicalTerm {
		lo, hi = hi, lo
	}

	var edges []model.RelationshipEdge

	if sim := Similarity(a.CanonicalTerm, b.CanonicalTerm); sim >= inf.cfg.SynonymSimilarityThreshold {
		edges = append(edges, model.RelationshipEdge{
			FromTermID: lo.ID,
			ToTermID:   hi.ID,
			Type:       model.RelationSynonymOf,
			Confidence: sim,
			Evidence:   fmt.Sprintf("trigram similarity %.2f between %q and %q", sim, lo.CanonicalTerm, hi.CanonicalTerm),
		})
	} else if shared, union := tagOverlap(a, b); shared >= inf.cfg.RelatedTagOverlapMin {
		// RELATED_TO is the weaker claim; skip it when the pair already
		// qualifies as synonyms.
		edges = append(edges, model.RelationshipEdge{
			FromTermID: lo.ID,
			ToTermID:   hi.ID,
			Type:       model.RelationRelatedTo,
			Confidence: float64(shared) / float64(union),
			Evidence:   fmt.Sprintf("%d shared domain tags between %q and %q", shared, lo.CanonicalTerm, hi.CanonicalTerm),
		})
	}

	if child, parent, ok := partOf(a, b); ok {
		edges = append(edges, model.RelationshipEdge{
			FromTermID: child.ID,
			ToTermID:   parent.ID,
			Type:       model.RelationPartOf,
			Confidence: inf.cfg.PartOfConfidence,
			Evidence:   fmt.Sprintf("%q extends head term %q", child.CanonicalTerm, parent.CanonicalTerm),
		})
	}

	return edges
}

// tagOverlap returns the intersection and union sizes of two tag sets.
func tagOverlap(a, b *model.GlossaryEntry) (shared, union int) {
	as, bs := a.TagSet(), b.TagSet()
	for t := range as {
		if bs[t] {
			shared++
		}
	}
	union = len(as) + len(bs) - shared
	if union == 0 {
		union = 1
	}
	return shared, union
}

// partOf decides the directed child -> parent relation for a pair, in
// either orientation. Exactly one orientation can hold since the child
// strictly extends the parent's tokens.
func partOf(a, b *model.GlossaryEntry) (child, parent *model.GlossaryEntry, ok bool) {
	switch {
	case suffixTokens(a.CanonicalTerm, b.CanonicalTerm):
		return a, b, true
	case suffixTokens(b.CanonicalTerm, a.CanonicalTerm):
		return b, a, true
	}
	return nil, nil, false
}
