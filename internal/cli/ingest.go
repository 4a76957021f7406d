package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/lexigraph/lexigraph/internal/metric"
	"github.com/lexigraph/lexigraph/internal/model"
	"github.com/lexigraph/lexigraph/internal/pipeline"
	"github.com/lexigraph/lexigraph/internal/source"
	"github.com/lexigraph/lexigraph/internal/worker"
)

var (
	ingestLang     string
	ingestManifest string
	ingestJSON     string
	ingestWorkers  int
	ingestBackend  string
	ingestDBPath   string
	extractURL     string
	ingestTimeout  time.Duration
	llmProvider    string
	llmModel       string
	metricsAddr    string
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [files or directories...]",
	Short: "Ingest documents and build glossary entries",
	Long: `Ingest loads documents, extracts candidate terminology, validates the
candidates, and merges survivors into the glossary store.

Plain-text, Markdown, and HTML files are read directly. Other formats
require an external text-extraction service (--extract-url).

Example:
  lexigraph ingest docs/
  lexigraph ingest manual.txt --lang en --store sqlite --db glossary.db
  lexigraph ingest --manifest corpus.txt --workers 8
  lexigraph ingest scans/ --extract-url http://extract.local:8080`,
	Args: cobra.ArbitraryArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestLang, "lang", "en", "document language (BCP-47 tag)")
	ingestCmd.Flags().StringVar(&ingestManifest, "manifest", "", "file listing document paths, one per line")
	ingestCmd.Flags().StringVar(&ingestJSON, "json", "", "write per-document results to a JSON file")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "concurrent ingest workers (0 = configured default)")
	ingestCmd.Flags().StringVar(&ingestBackend, "store", "", "store backend: memory or sqlite")
	ingestCmd.Flags().StringVar(&ingestDBPath, "db", "", "sqlite database path")
	ingestCmd.Flags().StringVar(&extractURL, "extract-url", "", "external text-extraction service base URL")
	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", 0, "per-request extraction timeout (0 = configured default)")
	ingestCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "tag-suggestion provider (openai, ollama)")
	ingestCmd.Flags().StringVar(&llmModel, "llm-model", "", "tag-suggestion model name")
	ingestCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during ingest (e.g. :9090)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyIngestFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if len(args) == 0 && ingestManifest == "" {
		return fmt.Errorf("nothing to ingest: pass files/directories or --manifest")
	}

	paths := []string{}
	if len(args) > 0 {
		paths, err = source.Collect(args, extractURL != "")
		if err != nil {
			return err
		}
	}
	if ingestManifest != "" {
		manifest, err := worker.ReadPathsFromFile(ingestManifest)
		if err != nil {
			return err
		}
		paths = append(paths, manifest...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no documents found")
	}

	entries, _, closeStore, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	p := pipeline.New(cfg, entries, newLoader(cfg))

	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		p.UseExporter(metric.NewExporter(reg))
		srv := &http.Server{
			Addr:    metricsAddr,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fmt.Fprintf(os.Stderr, "Warning: metrics server: %v\n", err)
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Ingesting %d documents (%s, %d workers, %s store)\n",
			len(paths), ingestLang, cfg.Concurrency.IngestWorkers, cfg.Store.Backend)
	}

	batch := worker.NewBatchProcessor(p, cfg.Concurrency.IngestWorkers)
	outcomes := batch.ProcessPaths(context.Background(), paths)

	return reportIngest(cfg, p, outcomes)
}

// applyIngestFlags layers command-line flags over the merged config.
func applyIngestFlags(cfg *model.Config) {
	if ingestWorkers > 0 {
		cfg.Concurrency.IngestWorkers = ingestWorkers
	}
	if ingestBackend != "" {
		cfg.Store.Backend = ingestBackend
	}
	if ingestDBPath != "" {
		cfg.Store.Path = ingestDBPath
	}
	if ingestTimeout > 0 {
		cfg.Concurrency.ExtractTimeout = ingestTimeout
	}
	if ingestJSON != "" {
		cfg.Output.JSONPath = ingestJSON
	}

	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
		if llmModel != "" {
			cfg.LLM.Model = llmModel
		}
		switch llmProvider {
		case "openai":
			if key := os.Getenv("OPENAI_API_KEY"); key != "" {
				cfg.LLM.APIKey = key
			}
		case "ollama":
			if base := os.Getenv("OLLAMA_BASE_URL"); base != "" {
				cfg.LLM.BaseURL = base
			}
		}
	}
}

// newLoader routes supported formats to the local reader and everything
// else to the extraction service when one is configured.
func newLoader(cfg *model.Config) pipeline.Loader {
	l := &splitLoader{reader: source.NewReader(ingestLang)}
	if extractURL != "" {
		limiter := worker.NewLimiter(cfg.Concurrency.ExtractRequestsPerSecond, cfg.Concurrency.ExtractBurst)
		l.client = source.NewClient(extractURL, ingestLang, cfg.Concurrency.ExtractTimeout, limiter, 0)
	}
	return l
}

type splitLoader struct {
	reader *source.Reader
	client *source.Client
}

func (l *splitLoader) ReadFile(path string) (*model.Document, error) {
	if source.Supported(path) {
		return l.reader.ReadFile(path)
	}
	if l.client == nil {
		return nil, fmt.Errorf("unsupported file type %s (no --extract-url configured)", path)
	}
	return l.client.ReadFile(path)
}

func reportIngest(cfg *model.Config, p *pipeline.Pipeline, outcomes []*worker.IngestOutcome) error {
	var docs, failed, skipped, candidates, accepted, rejected, created, defs int
	for _, o := range outcomes {
		docs++
		if o.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", o.Path, o.Error)
			continue
		}

		r := o.Result
		if r.Skipped {
			skipped++
		}
		candidates += r.Candidates
		accepted += r.Accepted
		rejected += r.Rejected
		created += r.EntriesCreated
		defs += r.DefinitionsAdded

		for _, w := range r.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ %s: %d candidates, %d accepted, %d entries created\n",
				o.Path, r.Candidates, r.Accepted, r.EntriesCreated)
		}
	}

	fmt.Printf("Documents: %d (%d failed, %d skipped)\n", docs, failed, skipped)
	fmt.Printf("Candidates: %d (%d accepted, %d rejected)\n", candidates, accepted, rejected)
	fmt.Printf("Glossary: %d entries created, %d definitions added\n", created, defs)

	if cfg.Output.Verbose {
		for key, value := range p.Counters().Snapshot() {
			fmt.Fprintf(os.Stderr, "  %s: %d\n", key, value)
		}
	}

	if cfg.Output.JSONPath != "" {
		if err := writeOutcomesJSON(cfg.Output.JSONPath, outcomes); err != nil {
			return err
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", cfg.Output.JSONPath)
		}
	}

	if failed == docs {
		return fmt.Errorf("all %d documents failed", docs)
	}
	return nil
}

type outcomeJSON struct {
	Path   string                 `json:"path"`
	Error  string                 `json:"error,omitempty"`
	Result *pipeline.IngestResult `json:"result,omitempty"`
}

func writeOutcomesJSON(path string, outcomes []*worker.IngestOutcome) error {
	out := make([]outcomeJSON, 0, len(outcomes))
	for _, o := range outcomes {
		oj := outcomeJSON{Path: o.Path, Result: o.Result}
		if o.Error != nil {
			oj.Error = o.Error.Error()
		}
		out = append(out, oj)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
