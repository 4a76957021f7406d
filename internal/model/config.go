package model

import (
	"fmt"
	"time"
)

// Config is the full pipeline configuration. It is passed explicitly to
// each component and never mutated after Validate, so concurrent runs
// with different settings can coexist in one process.
type Config struct {
	Extraction  ExtractionConfig  `mapstructure:"extraction" yaml:"extraction"`
	Validation  ValidationConfig  `mapstructure:"validation" yaml:"validation"`
	Relations   RelationsConfig   `mapstructure:"relations" yaml:"relations"`
	Store       StoreConfig       `mapstructure:"store" yaml:"store"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	LLM         LLMConfig         `mapstructure:"llm" yaml:"llm"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
}

// ExtractionConfig controls candidate extraction
type ExtractionConfig struct {
	// Strategy selects the candidate source: "linguistic", "pattern",
	// or "auto" (linguistic when a dictionary covers the language,
	// else pattern fallback).
	Strategy string `mapstructure:"strategy" yaml:"strategy"`

	MinTermLength int `mapstructure:"min_term_length" yaml:"min_term_length"`
	MaxTermLength int `mapstructure:"max_term_length" yaml:"max_term_length"`

	// MinFrequency flags candidates below this count as low-confidence.
	// The validator is the sole authority on rejecting them.
	MinFrequency int `mapstructure:"min_frequency" yaml:"min_frequency"`
}

// ValidationConfig controls the quality validator rules
type ValidationConfig struct {
	Stopwords          []string `mapstructure:"stopwords" yaml:"stopwords"`
	DomainGenericWords []string `mapstructure:"domain_generic_words" yaml:"domain_generic_words"`

	// FragmentSuffixes are bound morphemes that show up as standalone
	// tokens in broken OCR output ("tion", "ment").
	FragmentSuffixes []string `mapstructure:"fragment_suffixes" yaml:"fragment_suffixes"`

	DisallowedSymbols string  `mapstructure:"disallowed_symbols" yaml:"disallowed_symbols"`
	MaxDigitRatio     float64 `mapstructure:"max_digit_ratio" yaml:"max_digit_ratio"`
}

// RelationsConfig controls relationship inference
type RelationsConfig struct {
	// SynonymSimilarityThreshold is an empirical constant; recalibrate
	// against a labeled term set before trusting it in a new domain.
	SynonymSimilarityThreshold float64 `mapstructure:"synonym_similarity_threshold" yaml:"synonym_similarity_threshold"`

	RelatedTagOverlapMin int     `mapstructure:"related_tag_overlap_min" yaml:"related_tag_overlap_min"`
	PartOfConfidence     float64 `mapstructure:"part_of_confidence" yaml:"part_of_confidence"`

	// Bucketing pre-filters candidate pairs by shared tokens/tags/prefix
	// before pairwise comparison. Decisions per pair are unchanged; it
	// only skips pairs that cannot match. Off by default.
	Bucketing bool `mapstructure:"bucketing" yaml:"bucketing"`

	// ChunkSize is the number of pair comparisons between checkpoints.
	ChunkSize int `mapstructure:"chunk_size" yaml:"chunk_size"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"` // "memory" or "sqlite"
	Path    string `mapstructure:"path" yaml:"path"`       // sqlite database path
}

// ConcurrencyConfig controls worker fan-out
type ConcurrencyConfig struct {
	IngestWorkers int `mapstructure:"ingest_workers" yaml:"ingest_workers"`

	// ExtractRequestsPerSecond throttles calls to an external
	// text-extraction service.
	ExtractRequestsPerSecond float64 `mapstructure:"extract_requests_per_second" yaml:"extract_requests_per_second"`
	ExtractBurst             int     `mapstructure:"extract_burst" yaml:"extract_burst"`
	ExtractTimeout           time.Duration `mapstructure:"extract_timeout" yaml:"extract_timeout"`
}

// LLMConfig controls the optional domain-tag suggester.
// Suggestions never gate validation.
type LLMConfig struct {
	Provider  string `mapstructure:"provider" yaml:"provider"` // "openai", "ollama", "" (disabled)
	Model     string `mapstructure:"model" yaml:"model"`
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
	Timeout   int    `mapstructure:"timeout" yaml:"timeout"` // seconds
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// OutputConfig controls CLI output
type OutputConfig struct {
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose"`
	JSONPath string `mapstructure:"json" yaml:"json"`
}

// DefaultConfig returns the stock configuration
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			Strategy:      "auto",
			MinTermLength: 4,
			MaxTermLength: 64,
			MinFrequency:  2,
		},
		Validation: ValidationConfig{
			Stopwords: []string{
				"the", "a", "an", "and", "or", "of", "for", "with",
				"this", "that", "from", "into", "such", "these", "those",
			},
			DomainGenericWords: []string{
				"system", "device", "method", "process", "value", "unit",
			},
			FragmentSuffixes: []string{
				"tion", "sion", "ment", "ness", "ity", "ing", "ance", "ence",
			},
			DisallowedSymbols: "<>{}[]|\\^~`",
			MaxDigitRatio:     0.3,
		},
		Relations: RelationsConfig{
			SynonymSimilarityThreshold: 0.80,
			RelatedTagOverlapMin:       2,
			PartOfConfidence:           0.9,
			Bucketing:                  false,
			ChunkSize:                  256,
		},
		Store: StoreConfig{
			Backend: "memory",
			Path:    "lexigraph.db",
		},
		Concurrency: ConcurrencyConfig{
			IngestWorkers:            4,
			ExtractRequestsPerSecond: 5,
			ExtractBurst:             5,
			ExtractTimeout:           30 * time.Second,
		},
		LLM: LLMConfig{
			Provider:  "",
			Timeout:   30,
			MaxTokens: 300,
		},
	}
}

// Validate checks the configuration before any document is processed.
// An invalid configuration is fatal at pipeline start.
func (c *Config) Validate() error {
	e := c.Extraction
	if e.MinTermLength < 1 {
		return fmt.Errorf("extraction.min_term_length must be >= 1, got %d", e.MinTermLength)
	}
	if e.MaxTermLength < e.MinTermLength {
		return fmt.Errorf("extraction.max_term_length (%d) must be >= min_term_length (%d)",
			e.MaxTermLength, e.MinTermLength)
	}
	if e.MinFrequency < 1 {
		return fmt.Errorf("extraction.min_frequency must be >= 1, got %d", e.MinFrequency)
	}
	switch e.Strategy {
	case "auto", "linguistic", "pattern":
	default:
		return fmt.Errorf("extraction.strategy must be auto, linguistic or pattern, got %q", e.Strategy)
	}

	if r := c.Validation.MaxDigitRatio; r < 0 || r > 1 {
		return fmt.Errorf("validation.max_digit_ratio must be within [0,1], got %.2f", r)
	}

	rel := c.Relations
	if rel.SynonymSimilarityThreshold <= 0 || rel.SynonymSimilarityThreshold > 1 {
		return fmt.Errorf("relations.synonym_similarity_threshold must be within (0,1], got %.2f",
			rel.SynonymSimilarityThreshold)
	}
	if rel.RelatedTagOverlapMin < 1 {
		return fmt.Errorf("relations.related_tag_overlap_min must be >= 1, got %d", rel.RelatedTagOverlapMin)
	}
	if rel.PartOfConfidence < 0 || rel.PartOfConfidence > 1 {
		return fmt.Errorf("relations.part_of_confidence must be within [0,1], got %.2f", rel.PartOfConfidence)
	}
	if rel.ChunkSize < 1 {
		return fmt.Errorf("relations.chunk_size must be >= 1, got %d", rel.ChunkSize)
	}

	switch c.Store.Backend {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("store.backend must be memory or sqlite, got %q", c.Store.Backend)
	}

	if c.Concurrency.IngestWorkers < 1 {
		return fmt.Errorf("concurrency.ingest_workers must be >= 1, got %d", c.Concurrency.IngestWorkers)
	}

	return nil
}

// StopwordSet merges language stopwords and domain generic words into
// one lookup set over normalized forms.
func (c *Config) StopwordSet() map[string]bool {
	set := make(map[string]bool, len(c.Validation.Stopwords)+len(c.Validation.DomainGenericWords))
	for _, w := range c.Validation.Stopwords {
		set[w] = true
	}
	for _, w := range c.Validation.DomainGenericWords {
		set[w] = true
	}
	return set
}
