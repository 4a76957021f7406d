package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/lexigraph/lexigraph/internal/model"
)

// Waiter gates outbound requests; satisfied by worker.Limiter.
type Waiter interface {
	Wait(ctx context.Context, key string) error
}

// Client talks to the external text-extraction service, which converts
// formats the local reader cannot parse (scanned PDFs and the like)
// into plain text. Extraction failures and timeouts are per-document
// errors; the rest of a batch proceeds.
type Client struct {
	baseURL    string
	language   string
	httpClient *http.Client
	limiter    Waiter
	maxBytes   int64
}

// NewClient creates an extraction-service client. timeout bounds each
// request; limiter may be nil to disable rate limiting.
func NewClient(baseURL, language string, timeout time.Duration, limiter Waiter, maxBytes int64) *Client {
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	return &Client{
		baseURL:    baseURL,
		language:   language,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		maxBytes:   maxBytes,
	}
}

// ReadFile uploads a file to the extraction service and wraps the
// returned plain text as a document, paged on form feeds like local
// text files.
func (c *Client) ReadFile(path string) (*model.Document, error) {
	return c.read(context.Background(), path)
}

// Extract is ReadFile with a caller-supplied context.
func (c *Client) Extract(ctx context.Context, path string) (*model.Document, error) {
	return c.read(ctx, path)
}

func (c *Client) read(ctx context.Context, path string) (*model.Document, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.baseURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	url := fmt.Sprintf("%s/v1/extract?filename=%s", c.baseURL, filepath.Base(path))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("extract %s: unexpected status %d", path, resp.StatusCode)
	}

	text, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read response for %s: %w", path, err)
	}

	return &model.Document{
		ID:       filepath.Clean(path),
		Language: c.language,
		Pages:    splitPages(string(text)),
	}, nil
}
