package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/lexigraph/lexigraph/internal/metric"
	"github.com/lexigraph/lexigraph/internal/model"
	"github.com/lexigraph/lexigraph/internal/relate"
)

var (
	inferLang      string
	inferResumeID  string
	inferDiscardID string
	inferBackend   string
	inferDBPath    string
	inferThreshold float64
	inferChunkSize int
	inferBucketing bool
	inferMetrics   string
)

// inferCmd represents the infer command
var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Infer relationships between glossary entries",
	Long: `Infer compares glossary entries pairwise and commits SYNONYM_OF,
RELATED_TO, and PART_OF edges to the relationship graph.

A run stages edges in chunks and commits atomically at the end. If a run
fails partway, the staged chunks stay under the printed run ID; pass it
back with --resume to pick up where the run stopped, or --discard to
drop the staged edges.

Example:
  lexigraph infer --store sqlite --db glossary.db
  lexigraph infer --language de
  lexigraph infer --resume 3f29c1d4-... --store sqlite --db glossary.db`,
	RunE: runInfer,
}

func init() {
	rootCmd.AddCommand(inferCmd)

	inferCmd.Flags().StringVar(&inferLang, "language", "", "restrict inference to one language (empty = all)")
	inferCmd.Flags().StringVar(&inferResumeID, "resume", "", "resume a failed run by ID")
	inferCmd.Flags().StringVar(&inferDiscardID, "discard", "", "discard a failed run's staged edges by ID")
	inferCmd.Flags().StringVar(&inferBackend, "store", "", "store backend: memory or sqlite")
	inferCmd.Flags().StringVar(&inferDBPath, "db", "", "sqlite database path")
	inferCmd.Flags().Float64Var(&inferThreshold, "threshold", 0, "synonym similarity threshold (0 = configured default)")
	inferCmd.Flags().IntVar(&inferChunkSize, "chunk-size", 0, "pairs staged per chunk (0 = configured default)")
	inferCmd.Flags().BoolVar(&inferBucketing, "bucketing", false, "pre-filter pairs by shared buckets")
	inferCmd.Flags().StringVar(&inferMetrics, "metrics-addr", "", "serve Prometheus metrics on this address during inference (e.g. :9090)")
}

func runInfer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if inferBackend != "" {
		cfg.Store.Backend = inferBackend
	}
	if inferDBPath != "" {
		cfg.Store.Path = inferDBPath
	}
	if inferThreshold > 0 {
		cfg.Relations.SynonymSimilarityThreshold = inferThreshold
	}
	if inferChunkSize > 0 {
		cfg.Relations.ChunkSize = inferChunkSize
	}
	if cmd.Flags().Changed("bucketing") {
		cfg.Relations.Bucketing = inferBucketing
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	entries, graph, closeStore, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	ctx := context.Background()

	if inferDiscardID != "" {
		if err := graph.DiscardRun(ctx, inferDiscardID); err != nil {
			return fmt.Errorf("discard run %s: %w", inferDiscardID, err)
		}
		fmt.Printf("Discarded run %s\n", inferDiscardID)
		return nil
	}

	inf := relate.New(entries, graph, cfg.Relations, metric.NewCounters())

	if inferMetrics != "" {
		reg := prometheus.NewRegistry()
		inf.UseExporter(metric.NewExporter(reg))
		srv := &http.Server{
			Addr:    inferMetrics,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fmt.Fprintf(os.Stderr, "Warning: metrics server: %v\n", err)
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	var report *relate.Report
	if inferResumeID != "" {
		report, err = inf.Resume(ctx, inferLang, inferResumeID)
	} else {
		report, err = inf.Run(ctx, inferLang)
	}
	if err != nil {
		if report != nil && report.RunID != "" {
			fmt.Fprintf(os.Stderr, "Run %s failed; resume with: lexigraph infer --resume %s\n",
				report.RunID, report.RunID)
		}
		return err
	}

	printReport(cfg.Output.Verbose, report)
	return nil
}

func printReport(verbose bool, r *relate.Report) {
	action := "Committed"
	if r.Resumed {
		action = "Resumed and committed"
	}
	fmt.Printf("%s run %s\n", action, r.RunID)
	fmt.Printf("Entries: %d, pairs compared: %d\n", r.Entries, r.Pairs)
	fmt.Printf("Edges: %d committed\n", r.Committed)

	if len(r.ByType) > 0 {
		types := make([]string, 0, len(r.ByType))
		for t := range r.ByType {
			types = append(types, string(t))
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Printf("  %s: %d\n", t, r.ByType[model.RelationType(t)])
		}
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "  staged: %d\n", r.Staged)
	}
}
