package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lexigraph/lexigraph/internal/pipeline"
)

// Ingester defines the interface for ingesting one document file
type Ingester interface {
	IngestPath(ctx context.Context, path string) (*pipeline.IngestResult, error)
}

// IngestJob ingests a single document file
type IngestJob struct {
	Path     string
	Ingester Ingester
}

// Execute runs the ingest job
func (j *IngestJob) Execute(ctx context.Context) Result {
	result, err := j.Ingester.IngestPath(ctx, j.Path)
	return &IngestOutcome{
		Path:   j.Path,
		Result: result,
		Error:  err,
	}
}

// IngestOutcome is the per-document result of a batch ingest. A failed
// document carries its error here; it never aborts the batch.
type IngestOutcome struct {
	Path   string
	Result *pipeline.IngestResult
	Error  error
}

// GetError returns the error from the ingest outcome
func (o *IngestOutcome) GetError() error {
	return o.Error
}

// BatchProcessor fans document files out across a worker pool
type BatchProcessor struct {
	ingester    Ingester
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(ingester Ingester, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		ingester:    ingester,
		concurrency: concurrency,
	}
}

// ProcessPaths ingests multiple document files concurrently
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*IngestOutcome {
	if len(paths) == 0 {
		return []*IngestOutcome{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&IngestJob{Path: path, Ingester: b.ingester})
	}

	results := pool.Wait()

	outcomes := make([]*IngestOutcome, len(results))
	for i, result := range results {
		outcomes[i] = result.(*IngestOutcome)
	}
	return outcomes
}

// ProcessManifest reads document paths from a manifest file and ingests
// them concurrently
func (b *BatchProcessor) ProcessManifest(ctx context.Context, manifestPath string) ([]*IngestOutcome, error) {
	paths, err := ReadPathsFromFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads document paths from a file (one per line,
// '#' comments and blank lines skipped, duplicates dropped)
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return paths, nil
}
