// Package pipeline orchestrates ingestion: normalize pages, extract
// candidates, validate, and merge survivors into the glossary. One
// document is one unit of work and one unit of failure; a bad document
// never takes down the batch.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lexigraph/lexigraph/internal/aggregate"
	"github.com/lexigraph/lexigraph/internal/cache"
	"github.com/lexigraph/lexigraph/internal/extract"
	"github.com/lexigraph/lexigraph/internal/llm"
	"github.com/lexigraph/lexigraph/internal/metric"
	"github.com/lexigraph/lexigraph/internal/model"
	"github.com/lexigraph/lexigraph/internal/normalize"
	"github.com/lexigraph/lexigraph/internal/store"
	"github.com/lexigraph/lexigraph/internal/validate"
)

// Loader turns a file path into a document. Implemented by
// source.Reader for local files and source.Client for the external
// extraction service.
type Loader interface {
	ReadFile(path string) (*model.Document, error)
}

// Pipeline runs the ingest stages for one configuration.
type Pipeline struct {
	cfg        *model.Config
	validator  *validate.Validator
	aggregator *aggregate.Aggregator
	entries    store.EntryStore
	tagger     *llm.Tagger // nil when disabled
	loader     Loader
	skip       *cache.Ingest
	counters   *metric.Counters
	exporter   *metric.Exporter // nil unless metrics export is wired

	mu         sync.Mutex
	extractors map[string]*extract.Extractor // per-language, tokenizer init is expensive
}

// New creates a pipeline. A failed tag-suggester init degrades to
// disabled tagging with a warning, matching its advisory role.
func New(cfg *model.Config, entries store.EntryStore, loader Loader) *Pipeline {
	counters := metric.NewCounters()

	tagger, err := llm.NewTagger(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		tagger = nil
	}

	return &Pipeline{
		cfg:        cfg,
		validator:  validate.NewValidator(cfg, counters),
		aggregator: aggregate.New(entries),
		entries:    entries,
		tagger:     tagger,
		loader:     loader,
		skip:       cache.NewIngest(24*time.Hour, time.Hour),
		counters:   counters,
		extractors: make(map[string]*extract.Extractor),
	}
}

// Counters exposes the pipeline's counter set for reporting.
func (p *Pipeline) Counters() *metric.Counters {
	return p.counters
}

// UseExporter mirrors counters into a Prometheus exporter.
func (p *Pipeline) UseExporter(e *metric.Exporter) {
	p.exporter = e
}

// IngestResult reports what ingesting one document did.
type IngestResult struct {
	DocID            string   `json:"doc_id"`
	Skipped          bool     `json:"skipped,omitempty"` // unchanged since last ingest
	Candidates       int      `json:"candidates"`
	Accepted         int      `json:"accepted"`
	Rejected         int      `json:"rejected"`
	EntriesCreated   int      `json:"entries_created"`
	DefinitionsAdded int      `json:"definitions_added"`
	Warnings         []string `json:"warnings,omitempty"`
}

// IngestPath loads and ingests one file.
func (p *Pipeline) IngestPath(ctx context.Context, path string) (*IngestResult, error) {
	doc, err := p.loader.ReadFile(path)
	if err != nil {
		p.observeDocument(metric.KeyDocumentsError, "failed")
		return nil, fmt.Errorf("load document: %w", err)
	}
	return p.IngestDocument(ctx, doc)
}

// IngestDocument runs the full per-document pass: skip-cache check,
// page normalization, extraction, validation, aggregation, and optional
// tag suggestion for entries created by this document.
func (p *Pipeline) IngestDocument(ctx context.Context, doc *model.Document) (*IngestResult, error) {
	result := &IngestResult{DocID: doc.ID}

	fingerprint := cache.Fingerprint(doc.ID, documentContent(doc))
	if p.skip.Seen(fingerprint) {
		result.Skipped = true
		p.observeDocument(metric.KeyDocuments, "skipped")
		return result, nil
	}

	extractor, err := p.extractor(doc.Language)
	if err != nil {
		p.observeDocument(metric.KeyDocumentsError, "failed")
		return nil, fmt.Errorf("document %s: %w", doc.ID, err)
	}

	normalized := model.Document{ID: doc.ID, Language: doc.Language}
	for _, page := range doc.Pages {
		normalized.Pages = append(normalized.Pages, model.Page{
			Number: page.Number,
			Text:   normalize.Text(page.Text),
		})
	}

	var created []model.TermCandidate
	for _, cand := range extractor.Document(normalized) {
		result.Candidates++

		verdict := p.validator.Validate(cand)
		if p.exporter != nil {
			p.exporter.ObserveValidation(verdict.Reason, verdict.Accepted)
		}
		if !verdict.Accepted {
			result.Rejected++
			continue
		}
		result.Accepted++

		rec, err := p.aggregator.Record(ctx, cand)
		if err != nil {
			p.observeDocument(metric.KeyDocumentsError, "failed")
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		if rec.Created {
			result.EntriesCreated++
			created = append(created, cand)
		}
		if rec.Added {
			result.DefinitionsAdded++
		}
	}

	p.suggestTags(ctx, created, result)

	p.skip.Mark(fingerprint)
	p.observeDocument(metric.KeyDocuments, "ok")
	return result, nil
}

// suggestTags asks the optional tagger to label entries this document
// created. Failures become warnings; ingestion already succeeded.
func (p *Pipeline) suggestTags(ctx context.Context, created []model.TermCandidate, result *IngestResult) {
	if !p.tagger.Enabled() {
		return
	}

	for _, cand := range created {
		entry, err := p.entries.Get(ctx, cand.NormalizedForm, cand.Language)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("tag %q: %v", cand.NormalizedForm, err))
			continue
		}

		tags, err := p.tagger.Suggest(ctx, entry)
		if err != nil {
			result.Warnings = append(result.Warnings, err.Error())
			continue
		}
		if len(tags) == 0 {
			continue
		}
		if err := p.entries.SetDomainTags(ctx, entry.ID, tags); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("tag %q: %v", cand.NormalizedForm, err))
		}
	}
}

func (p *Pipeline) extractor(language string) (*extract.Extractor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.extractors[language]; ok {
		return e, nil
	}
	e, err := extract.New(p.cfg.Extraction, language)
	if err != nil {
		return nil, err
	}
	p.extractors[language] = e
	return e, nil
}

func (p *Pipeline) observeDocument(key, status string) {
	p.counters.Inc(key)
	if p.exporter != nil {
		p.exporter.ObserveDocument(status)
	}
}

func documentContent(doc *model.Document) string {
	var b strings.Builder
	for _, page := range doc.Pages {
		b.WriteString(page.Text)
		b.WriteString("\f")
	}
	return b.String()
}
